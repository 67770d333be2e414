package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/platform/cache"
)

// Store persists session state. Load returns a fresh default state for an
// unknown id.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, st *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store. States are copied on
// the way in and out so callers never share a map or slice with the store.
type MemoryStore struct {
	sessions map[string]*State
	mu       sync.RWMutex
	now      func() time.Time
	onEvict  func(id string)
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithOnEvict registers fn to run for every session removed by Sweep, after
// the store lock is released.
func WithOnEvict(fn func(id string)) MemoryOption {
	return func(s *MemoryStore) {
		s.onEvict = fn
	}
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*State),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok {
		return New(id), nil
	}
	return st.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, st *State) error {
	if st.ID == "" {
		return fmt.Errorf("session id is required")
	}
	c := st.Clone()
	c.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[st.ID] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions not saved within maxIdle and returns how many were
// removed.
func (s *MemoryStore) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var evicted []string
	for id, st := range s.sessions {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, id := range evicted {
			s.onEvict(id)
		}
	}
	return len(evicted)
}

const redisKeyPrefix = "study:session:"

// RedisStore keeps JSON snapshots of sessions in Redis with a sliding TTL.
type RedisStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed session store. Each save refreshes the
// key's ttl.
func NewRedisStore(c *cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	var st State
	if err := s.cache.GetJSON(ctx, redisKey(id), &st); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return New(id), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	st.ID = id
	st.EnsureDefaults()
	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, st *State) error {
	if st.ID == "" {
		return fmt.Errorf("session id is required")
	}
	snapshot := *st
	snapshot.UpdatedAt = time.Now()
	if err := s.cache.SetJSON(ctx, redisKey(st.ID), &snapshot, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, redisKey(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
