package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sccsite/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testKey    = "test-secret"
	testIssuer = "scc-admin"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:auth-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.EnsureUser(gdb, "Admin@Example.com", "s3cret-pass"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func newTestGate(t *testing.T) *Gate {
	return NewGate(NewUserAuthenticator(setupAuthDB(t)), testKey, testIssuer, time.Hour)
}

func TestLoginIssuesRestorableToken(t *testing.T) {
	gate := newTestGate(t)
	session := gate.NewSession()
	if session.State() != StateChecking {
		t.Fatalf("expected checking, got %s", session.State())
	}

	if err := session.Login(context.Background(), " admin@example.com ", "s3cret-pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !session.Authenticated() {
		t.Fatalf("expected authenticated, got %s", session.State())
	}
	if session.Claims().Email != "admin@example.com" {
		t.Fatalf("unexpected claims: %+v", session.Claims())
	}
	if ttl := time.Until(session.ExpiresAt()); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected expiry in %v", ttl)
	}

	restored := gate.NewSession()
	if state := restored.Restore(session.Token()); state != StateAuthenticated {
		t.Fatalf("expected restored session to be authenticated, got %s", state)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	gate := newTestGate(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@example.com", "nope"},
		{"unknown user", "other@example.com", "s3cret-pass"},
		{"blank", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := gate.NewSession()
			err := session.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if session.State() != StateUnauthenticated || session.Token() != "" {
				t.Fatalf("expected unauthenticated without token, got %s %q", session.State(), session.Token())
			}
		})
	}
}

func TestRestoreRejectsInvalidTokens(t *testing.T) {
	gate := newTestGate(t)
	now := time.Now()

	expired, _, err := IssueToken("admin@example.com", testIssuer, testKey, time.Minute, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	foreign, _, err := IssueToken("admin@example.com", "someone-else", testKey, time.Hour, now)
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}
	wrongKey, _, err := IssueToken("admin@example.com", testIssuer, "other-key", time.Hour, now)
	if err != nil {
		t.Fatalf("issue wrong key: %v", err)
	}

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"expired":   expired,
		"issuer":    foreign,
		"signature": wrongKey,
	} {
		session := gate.NewSession()
		if state := session.Restore(token); state != StateUnauthenticated {
			t.Fatalf("%s: expected unauthenticated, got %s", name, state)
		}
	}
}

func TestLogoutClearsSession(t *testing.T) {
	gate := newTestGate(t)
	session := gate.NewSession()
	if err := session.Login(context.Background(), "admin@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	session.Logout()
	if session.State() != StateUnauthenticated || session.Token() != "" {
		t.Fatalf("expected cleared session, got %s %q", session.State(), session.Token())
	}
}

func TestNewGateDefaultsTTL(t *testing.T) {
	gate := NewGate(nil, testKey, testIssuer, 0)
	if gate.TTL() != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", gate.TTL())
	}
}
