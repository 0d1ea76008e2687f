package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/qmedica/catalog-backend/pkg/enums"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(sessionID string) string {
	return fmt.Sprintf("sess:%s", sessionID)
}

func TestManagerCreateAndGet(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	id, err := manager.Create(context.Background(), Record{
		UserID: 7,
		Email:  "ops@example.com",
		Role:   enums.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a session id")
	}

	rec, err := manager.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.UserID != 7 || rec.Email != "ops@example.com" || rec.Role != enums.RoleAdmin {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestManagerGetLeavesLifetimeFixed(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: 24 * time.Hour}

	id, err := manager.Create(context.Background(), Record{UserID: 7, Email: "ops@example.com", Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	key := store.SessionKey(id)
	if got := store.ttls[key]; got != 24*time.Hour {
		t.Fatalf("create ttl = %v, want 24h", got)
	}

	// Lookups must not roll the expiry: the record dies with the cookie's
	// exp claim no matter how active the user is.
	for i := 0; i < 3; i++ {
		if _, err := manager.Get(context.Background(), id); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if got := store.ttls[key]; got != 24*time.Hour {
		t.Fatalf("ttl changed to %v after lookups", got)
	}
}

func TestManagerCreateRejectsInvalidRole(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	if _, err := manager.Create(context.Background(), Record{UserID: 1, Role: enums.Role("Janitor")}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestManagerGetMissingSession(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	if _, err := manager.Get(context.Background(), "nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := manager.Get(context.Background(), "  "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for blank id, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	id, err := manager.Create(context.Background(), Record{UserID: 3, Email: "a@b.c", Role: enums.RoleProductSpecialist})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := manager.Revoke(context.Background(), id); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := manager.Get(context.Background(), id); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after revoke, got %v", err)
	}
}
