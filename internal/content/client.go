package content

import (
	"context"
	"log"
)

// Client exposes a Repository with a never-failing contract for read paths
// that must always render: lists degrade to empty, writes to nil/false.
// Errors are logged. Callers re-fetch after writes; Client caches nothing.
type Client[T any] struct {
	repo   Repository[T]
	entity string
}

// NewClient wraps repo.
func NewClient[T any](repo Repository[T], entity string) *Client[T] {
	return &Client[T]{repo: repo, entity: entity}
}

// FetchAll returns all records newest first, or an empty slice on error.
func (c *Client[T]) FetchAll(ctx context.Context) []T {
	items, err := c.repo.List(ctx)
	if err != nil {
		log.Printf("[content] fetch %s: %v", c.entity, err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// FetchOne returns the record or nil.
func (c *Client[T]) FetchOne(ctx context.Context, id string) *T {
	item, err := c.repo.Get(ctx, id)
	if err != nil {
		log.Printf("[content] fetch %s %s: %v", c.entity, id, err)
		return nil
	}
	return item
}

// Create persists item and returns it, or nil on failure.
func (c *Client[T]) Create(ctx context.Context, item *T) *T {
	if err := c.repo.Create(ctx, item); err != nil {
		log.Printf("[content] create %s: %v", c.entity, err)
		return nil
	}
	return item
}

// Update patches the record and returns it, or nil on failure.
func (c *Client[T]) Update(ctx context.Context, id string, apply func(*T)) *T {
	item, err := c.repo.Update(ctx, id, apply)
	if err != nil {
		log.Printf("[content] update %s %s: %v", c.entity, id, err)
		return nil
	}
	return item
}

// Delete removes the record and reports success.
func (c *Client[T]) Delete(ctx context.Context, id string) bool {
	if err := c.repo.Delete(ctx, id); err != nil {
		log.Printf("[content] delete %s %s: %v", c.entity, id, err)
		return false
	}
	return true
}
