package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/metrics"
	"github.com/sccsite/internal/syncqueue"
)

// WriteThrough writes to the remote Repository first. When the remote write
// fails the record is kept locally as pending, given a timestamp id, and
// announced on the sync queue; Reconcile pushes pending records upstream.
//
// Reads return pending records first, then remote rows. If the remote list
// fails, the last successful remote list is served from the local snapshot.
type WriteThrough[T any] struct {
	remote      Repository[T]
	local       *localstore.Store
	queue       syncqueue.Queue
	entity      string
	snapshotKey string
	pendingKey  string

	mu     sync.Mutex
	syncMu sync.Mutex
	now    func() time.Time
}

// NewWriteThrough creates a WriteThrough for entity. queue may be nil.
func NewWriteThrough[T any](remote Repository[T], local *localstore.Store, queue syncqueue.Queue, entity, snapshotKey string) *WriteThrough[T] {
	w := &WriteThrough[T]{
		remote:      remote,
		local:       local,
		queue:       queue,
		entity:      entity,
		snapshotKey: snapshotKey,
		pendingKey:  localstore.PendingKey(entity),
		now:         time.Now,
	}
	metrics.PendingWrites.WithLabelValues(entity).Set(float64(len(w.loadPending())))
	return w
}

// Entity returns the entity name.
func (w *WriteThrough[T]) Entity() string { return w.entity }

// List returns pending records followed by remote rows.
func (w *WriteThrough[T]) List(ctx context.Context) ([]T, error) {
	items, err := w.remote.List(ctx)
	if err != nil {
		if !w.local.Available() {
			return nil, err
		}
		log.Printf("[content] %s remote list failed, serving local snapshot: %v", w.entity, err)
		items = localstore.Load(w.local, w.snapshotKey, []T{})
	} else {
		localstore.Save(w.local, w.snapshotKey, items)
	}

	pending := w.Pending()
	out := make([]T, 0, len(pending)+len(items))
	out = append(out, pending...)
	out = append(out, items...)
	return out, nil
}

// Pending returns records that exist only locally, newest first.
func (w *WriteThrough[T]) Pending() []T {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending := w.loadPending()
	out := make([]T, 0, len(pending))
	for i := len(pending) - 1; i >= 0; i-- {
		item := pending[i]
		entityOf(&item).MarkPending(true)
		out = append(out, item)
	}
	return out
}

// Get returns a pending record or the remote row.
func (w *WriteThrough[T]) Get(ctx context.Context, id string) (*T, error) {
	w.mu.Lock()
	pending := w.loadPending()
	w.mu.Unlock()

	if idx := indexOf(pending, id); idx >= 0 {
		item := pending[idx]
		entityOf(&item).MarkPending(true)
		return &item, nil
	}
	return w.remote.Get(ctx, id)
}

// Create writes item remotely, falling back to a pending local record.
func (w *WriteThrough[T]) Create(ctx context.Context, item *T) error {
	err := w.remote.Create(ctx, item)
	if err == nil {
		return nil
	}
	if !w.local.Available() {
		return err
	}
	log.Printf("[content] %s remote create failed, keeping local copy: %v", w.entity, err)

	e := entityOf(item)
	now := w.now()
	e.SetID(strconv.FormatInt(now.UnixNano(), 10))
	e.Stamp(now)
	e.MarkPending(true)

	w.mu.Lock()
	pending := append(w.loadPending(), *item)
	w.savePending(pending)
	w.mu.Unlock()

	w.announce(ctx, e.GetID())
	return nil
}

// Update patches a pending record locally, otherwise the remote row.
func (w *WriteThrough[T]) Update(ctx context.Context, id string, apply func(*T)) (*T, error) {
	w.mu.Lock()
	pending := w.loadPending()
	if idx := indexOf(pending, id); idx >= 0 {
		item := pending[idx]
		apply(&item)
		e := entityOf(&item)
		e.SetID(id)
		e.Stamp(w.now())
		e.MarkPending(true)
		pending[idx] = item
		w.savePending(pending)
		w.mu.Unlock()
		return &item, nil
	}
	w.mu.Unlock()

	return w.remote.Update(ctx, id, apply)
}

// Delete removes a pending record locally, otherwise the remote row.
func (w *WriteThrough[T]) Delete(ctx context.Context, id string) error {
	w.mu.Lock()
	pending := w.loadPending()
	if idx := indexOf(pending, id); idx >= 0 {
		pending = append(pending[:idx], pending[idx+1:]...)
		w.savePending(pending)
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	return w.remote.Delete(ctx, id)
}

// Reconcile pushes pending records to the remote store and returns how many
// were synced. A record whose id already exists remotely is overwritten with
// the pending copy.
//
// Pending records stay editable while they are pushed. A record deleted
// during its push is removed remotely again; a record edited during its push
// stays pending and is pushed on the next run.
func (w *WriteThrough[T]) Reconcile(ctx context.Context) (int, error) {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	w.mu.Lock()
	pending := w.loadPending()
	w.mu.Unlock()
	if len(pending) == 0 {
		return 0, nil
	}

	synced := 0
	var errs []error
	for _, item := range pending {
		id := entityOf(&item).GetID()
		if err := w.push(ctx, id, item); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", w.entity, id, err))
			continue
		}

		switch w.settle(id, item) {
		case settleSynced:
			synced++
		case settleDeleted:
			if err := w.remote.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s %s: delete after sync: %w", w.entity, id, err))
			}
		case settleChanged:
			w.announce(ctx, id)
		}
	}

	if synced > 0 {
		log.Printf("[content] %s reconciled %d pending record(s)", w.entity, synced)
	}
	return synced, errors.Join(errs...)
}

// push writes the pending copy remotely, updating the row if it already exists.
func (w *WriteThrough[T]) push(ctx context.Context, id string, item T) error {
	record := item
	entityOf(&record).MarkPending(false)

	if _, err := w.remote.Get(ctx, id); err == nil {
		_, err = w.remote.Update(ctx, id, func(row *T) { *row = record })
		return err
	}
	return w.remote.Create(ctx, &record)
}

type settleResult int

const (
	settleSynced settleResult = iota
	settleDeleted
	settleChanged
)

// settle drops id from pending if it still matches the pushed copy.
func (w *WriteThrough[T]) settle(id string, pushed T) settleResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.loadPending()
	idx := indexOf(current, id)
	if idx < 0 {
		return settleDeleted
	}
	if !sameRecord(current[idx], pushed) {
		return settleChanged
	}
	w.savePending(append(current[:idx], current[idx+1:]...))
	return settleSynced
}

func sameRecord[T any](a, b T) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}

func (w *WriteThrough[T]) announce(ctx context.Context, id string) {
	if w.queue == nil {
		return
	}
	msg := syncqueue.Message{Type: syncqueue.TypePending, Entity: w.entity, ID: id}
	if err := w.queue.Publish(ctx, msg); err != nil {
		log.Printf("[content] %s announce pending %s: %v", w.entity, id, err)
	}
}

// loadPending and savePending must be called with mu held.
func (w *WriteThrough[T]) loadPending() []T {
	return localstore.Load(w.local, w.pendingKey, []T{})
}

func (w *WriteThrough[T]) savePending(items []T) {
	if len(items) == 0 {
		localstore.Delete(w.local, w.pendingKey)
	} else {
		localstore.Save(w.local, w.pendingKey, items)
	}
	metrics.PendingWrites.WithLabelValues(w.entity).Set(float64(len(items)))
}

func entityOf[T any](item *T) Entity {
	e, ok := any(item).(Entity)
	if !ok {
		panic(fmt.Sprintf("content: %T does not embed db.Model", item))
	}
	return e
}

func indexOf[T any](items []T, id string) int {
	for i := range items {
		if entityOf(&items[i]).GetID() == id {
			return i
		}
	}
	return -1
}
