// internal/db/redis.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisDB struct {
	Client *redis.Client
}

func NewRedisDB(redisURL string) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("[Redis] ✅ Connected to Redis")
	return &RedisDB{Client: client}, nil
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		r.Client.Close()
		log.Println("[Redis] Connection closed")
	}
}

// ============================================
// Session store
// ============================================

// Sessions carry nothing but the account id. Role, verification state and
// profile fields are re-read from storage on every request, so a session
// can never serve stale privileges.

func (r *RedisDB) SetSession(ctx context.Context, sessionID, accountID string, expiration time.Duration) error {
	return r.Client.Set(ctx, "session:"+sessionID, accountID, expiration).Err()
}

// GetSession returns the account id for a session, or "" if the session
// does not exist or has expired.
func (r *RedisDB) GetSession(ctx context.Context, sessionID string) (string, error) {
	accountID, err := r.Client.Get(ctx, "session:"+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}

func (r *RedisDB) DeleteSession(ctx context.Context, sessionID string) error {
	return r.Client.Del(ctx, "session:"+sessionID).Err()
}

// ============================================
// In-memory fallback
// ============================================

// MemorySessionStore keeps sessions in process memory. Used when Redis is
// not configured; sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	accountID string
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (m *MemorySessionStore) SetSession(ctx context.Context, sessionID, accountID string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = memorySession{
		accountID: accountID,
		expiresAt: time.Now().Add(expiration),
	}
	return nil
}

func (m *MemorySessionStore) GetSession(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return "", nil
	}
	if time.Now().After(s.expiresAt) {
		delete(m.sessions, sessionID)
		return "", nil
	}
	return s.accountID, nil
}

func (m *MemorySessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
