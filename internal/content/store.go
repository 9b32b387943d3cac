package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sccsite/internal/metrics"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Entity is implemented by pointers to records embedding db.Model.
type Entity interface {
	GetID() string
	SetID(id string)
	CreatedTime() time.Time
	Stamp(t time.Time)
	MarkPending(pending bool)
}

// Repository is the row-level contract of a content table.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id string, apply func(*T)) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Store is a gorm-backed Repository for one table.
type Store[T any] struct {
	db     *gorm.DB
	entity string
}

// NewStore creates a Store. entity names the table in errors and metrics.
func NewStore[T any](gdb *gorm.DB, entity string) *Store[T] {
	return &Store[T]{db: gdb, entity: entity}
}

// Entity returns the entity name.
func (s *Store[T]) Entity() string { return s.entity }

// List returns all rows, newest first.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&items).Error
	metrics.ObserveContent(s.entity, "list", err)
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", s.entity, err)
	}
	return items, nil
}

// Get fetches a row by id.
func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s get %s: %w", s.entity, id, err)
	}
	return &item, nil
}

// Create inserts item. The id and timestamps are assigned on insert.
func (s *Store[T]) Create(ctx context.Context, item *T) error {
	err := s.db.WithContext(ctx).Create(item).Error
	metrics.ObserveContent(s.entity, "create", err)
	if err != nil {
		return fmt.Errorf("%s create: %w", s.entity, err)
	}
	return nil
}

// Update loads the row, applies the patch and saves it. The id cannot be
// changed by apply; updated_at is refreshed.
func (s *Store[T]) Update(ctx context.Context, id string, apply func(*T)) (*T, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		metrics.ObserveContent(s.entity, "update", err)
		return nil, err
	}

	apply(item)
	if e, ok := any(item).(Entity); ok {
		e.SetID(id)
	}

	err = s.db.WithContext(ctx).Save(item).Error
	metrics.ObserveContent(s.entity, "update", err)
	if err != nil {
		return nil, fmt.Errorf("%s update %s: %w", s.entity, id, err)
	}
	return item, nil
}

// Delete removes the row.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	metrics.ObserveContent(s.entity, "delete", res.Error)
	if res.Error != nil {
		return fmt.Errorf("%s delete %s: %w", s.entity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of rows.
func (s *Store[T]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("%s count: %w", s.entity, err)
	}
	return total, nil
}
