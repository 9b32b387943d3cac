package content

import (
	"context"
	"log"
	"time"

	"github.com/sccsite/internal/syncqueue"
)

// Reconcilable is a store holding local writes that still need to reach the
// remote store.
type Reconcilable interface {
	Entity() string
	Reconcile(ctx context.Context) (int, error)
}

// Reconciler drives Reconcile on queue notifications and on a fixed interval.
type Reconciler struct {
	queue    syncqueue.Queue
	interval time.Duration
	targets  map[string]Reconcilable
	order    []string
}

// NewReconciler creates a Reconciler for targets. queue may be nil, in which
// case only the interval triggers retries.
func NewReconciler(queue syncqueue.Queue, interval time.Duration, targets ...Reconcilable) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	r := &Reconciler{queue: queue, interval: interval, targets: make(map[string]Reconcilable, len(targets))}
	for _, target := range targets {
		r.targets[target.Entity()] = target
		r.order = append(r.order, target.Entity())
	}
	return r
}

// SyncAll reconciles every target once and returns the synced count per entity.
func (r *Reconciler) SyncAll(ctx context.Context) map[string]int {
	result := make(map[string]int, len(r.order))
	for _, entity := range r.order {
		result[entity] = r.sync(ctx, entity)
	}
	return result
}

func (r *Reconciler) sync(ctx context.Context, entity string) int {
	target, ok := r.targets[entity]
	if !ok {
		return 0
	}
	n, err := target.Reconcile(ctx)
	if err != nil {
		log.Printf("[sync] %s: %v", entity, err)
	}
	return n
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	var messages <-chan syncqueue.Message
	if r.queue != nil {
		ch, err := r.queue.Consume(ctx)
		if err != nil {
			log.Printf("[sync] consume queue: %v", err)
		} else {
			messages = ch
		}
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			if msg.Type == syncqueue.TypePending {
				r.sync(ctx, msg.Entity)
			}
		case <-ticker.C:
			r.SyncAll(ctx)
		}
	}
}
