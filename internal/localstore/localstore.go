// Package localstore keeps JSON values under namespaced keys in a local sqlite
// table. It is the fallback store used when the hosted table store is unreachable.
//
// Reads never fail: a missing key, an unparseable value or a store without a
// backing database all yield the caller's default. Writes are best effort.
package localstore

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/sccsite/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Namespaced keys.
const (
	KeyTeam            = "scc:team"
	KeyEvents          = "scc:events"
	KeyGallery         = "scc:gallery"
	KeyProjects        = "scc:projects"
	KeyAnnouncements   = "scc:announcements"
	KeyAbout           = "scc:about"
	KeyContactMessages = "scc:contact_messages"
	KeyEventExtra      = "scc:event_extra"
)

// PendingKey returns the key holding not-yet-synced writes for an entity.
func PendingKey(entity string) string {
	return "scc:pending:" + entity
}

// Store wraps the local key-value table.
type Store struct {
	db *gorm.DB
}

// New returns a Store. A nil db yields a Store whose reads return defaults and
// whose writes are dropped.
func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Available reports whether the store has a backing database.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// Load returns the value stored under key, or def.
func Load[T any](s *Store, key string, def T) T {
	if !s.Available() {
		return def
	}

	var entry db.LocalEntry
	if err := s.db.Where("key = ?", key).First(&entry).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[localstore] load %s: %v", key, err)
		}
		return def
	}

	var value T
	if err := json.Unmarshal([]byte(entry.Value), &value); err != nil {
		log.Printf("[localstore] decode %s: %v", key, err)
		return def
	}
	return value
}

// Save stores value under key, replacing any previous value.
func Save(s *Store, key string, value any) {
	if !s.Available() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[localstore] encode %s: %v", key, err)
		return
	}

	upsert(s, key, string(raw))
}

// Delete removes key.
func Delete(s *Store, key string) {
	if !s.Available() {
		return
	}
	if err := s.db.Where("key = ?", key).Delete(&db.LocalEntry{}).Error; err != nil {
		log.Printf("[localstore] delete %s: %v", key, err)
	}
}

func upsert(s *Store, key, raw string) {
	entry := db.LocalEntry{Key: key, Value: raw, UpdatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		log.Printf("[localstore] save %s: %v", key, err)
	}
}
