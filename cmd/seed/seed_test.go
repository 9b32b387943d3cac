package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestServices(t *testing.T) *service.Services {
	t.Helper()

	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(append(db.ContentModels(), &db.LocalEntry{})...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return service.New(service.Options{DB: gdb, Local: localstore.New(gdb)})
}

func TestSeedContentFillsEmptyTables(t *testing.T) {
	services := setupSeedTestServices(t)
	ctx := context.Background()

	created, err := seedContent(ctx, services)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	want := map[string]int{
		"team":          len(sampleTeam()),
		"events":        len(sampleEvents()),
		"projects":      len(sampleProjects()),
		"gallery":       len(sampleGallery()),
		"announcements": len(sampleAnnouncements()),
		"about":         len(sampleAbout()),
	}
	for name, n := range want {
		if created[name] != n {
			t.Fatalf("expected %d %s records, got %d", n, name, created[name])
		}
	}

	events, err := services.EventService.List(ctx)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	var withExtras int
	for _, e := range events {
		if !e.EventExtra.IsZero() {
			withExtras++
		}
	}
	if withExtras != 2 {
		t.Fatalf("expected extras on two seeded events, got %d", withExtras)
	}

	announcements, _ := services.Announcements.Store.List(ctx)
	for _, a := range announcements {
		if a.Date == "" {
			t.Fatalf("expected announcement date to be stamped on save")
		}
	}
}

func TestSeedContentSkipsPopulatedTables(t *testing.T) {
	services := setupSeedTestServices(t)
	ctx := context.Background()

	if err := services.Team.Store.Create(ctx, &db.TeamMember{
		Name: "Existing", Role: "Member", Department: "Tech", Email: "existing@example.com",
	}); err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	created, err := seedContent(ctx, services)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if created["team"] != 0 {
		t.Fatalf("expected team to be skipped, created %d", created["team"])
	}

	count, _ := services.Team.Store.Count(ctx)
	if count != 1 {
		t.Fatalf("expected existing member only, got %d", count)
	}

	again, err := seedContent(ctx, services)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	for name, n := range again {
		if n != 0 {
			t.Fatalf("expected second run to create nothing, %s created %d", name, n)
		}
	}
}
