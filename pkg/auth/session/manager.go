package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/enums"
	redisclient "github.com/qmedica/catalog-backend/pkg/redis"
)

var ErrNoSession = errors.New("session not found")

// Record is the server-side session state kept in Redis. The cookie only
// references it by ID, so deleting the record logs the user out everywhere.
type Record struct {
	UserID uint       `json:"user_id"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager handles creation, lookup, and revocation of server-side sessions.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
}

// Store is the full session surface the HTTP layer depends on.
type Store interface {
	Checker
	Create(ctx context.Context, rec Record) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
	}, nil
}

// Create stores a new session record and returns its identifier.
func (m *Manager) Create(ctx context.Context, rec Record) (string, error) {
	if rec.UserID == 0 {
		return "", fmt.Errorf("user id is required")
	}
	if !rec.Role.IsValid() {
		return "", fmt.Errorf("invalid role %q", rec.Role)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding session record: %w", err)
	}

	sessionID := NewSessionID()
	if err := m.store.Set(ctx, m.keyer.SessionKey(sessionID), payload, m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Get loads the session record. The record's lifetime is fixed at creation,
// matching the cookie's JWT exp claim, so lookups never touch the TTL.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Record, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}

	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal([]byte(raw), rec); err != nil {
		return nil, fmt.Errorf("decoding session record: %w", err)
	}
	return rec, nil
}

// Revoke deletes the session record tied to the identifier.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// NewSessionID produces the identifier used as the JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
