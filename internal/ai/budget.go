package ai

import (
	"fmt"
	"sync"
	"time"
)

// BudgetChecker checks and records token usage against per-session budgets.
type BudgetChecker interface {
	// Check returns true if the session has budget remaining.
	Check(sessionID string) (bool, error)
	// Record records token usage for a session.
	Record(sessionID string, tokens int) error
	// Usage returns current usage and the budget for a session (0 = unlimited).
	Usage(sessionID string) (used int64, budget int64, err error)
}

// InMemoryBudget tracks token usage per session in process memory. Sessions
// without an explicit budget get the default limit; a zero limit means unlimited.
type InMemoryBudget struct {
	mu           sync.RWMutex
	defaultLimit int64
	budgets      map[string]int64 // session -> explicit budget limit
	usage        map[string]int64 // session -> tokens used
	lastUsed     map[string]time.Time
	now          func() time.Time
}

// NewInMemoryBudget creates a new in-memory budget tracker.
func NewInMemoryBudget(defaultLimit int64) *InMemoryBudget {
	return &InMemoryBudget{
		defaultLimit: defaultLimit,
		budgets:      make(map[string]int64),
		usage:        make(map[string]int64),
		lastUsed:     make(map[string]time.Time),
		now:          time.Now,
	}
}

// SetBudget overrides the token budget for one session.
func (b *InMemoryBudget) SetBudget(sessionID string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[sessionID] = tokens
}

func (b *InMemoryBudget) Check(sessionID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	limit := b.limit(sessionID)
	if limit <= 0 {
		return true, nil
	}
	return b.usage[sessionID] < limit, nil
}

func (b *InMemoryBudget) Record(sessionID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[sessionID] += int64(tokens)
	b.lastUsed[sessionID] = b.now()
	return nil
}

func (b *InMemoryBudget) Usage(sessionID string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[sessionID], b.limit(sessionID), nil
}

// Forget drops the usage counters of a session.
func (b *InMemoryBudget) Forget(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.usage, sessionID)
	delete(b.budgets, sessionID)
	delete(b.lastUsed, sessionID)
}

// Sweep drops the counters of sessions that recorded no usage within maxIdle
// and returns how many were dropped. Explicit budgets set with SetBudget are
// kept unless the session also has usage to expire.
func (b *InMemoryBudget) Sweep(maxIdle time.Duration) int {
	cutoff := b.now().Add(-maxIdle)

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for id, at := range b.lastUsed {
		if at.Before(cutoff) {
			delete(b.usage, id)
			delete(b.budgets, id)
			delete(b.lastUsed, id)
			removed++
		}
	}
	return removed
}

func (b *InMemoryBudget) limit(sessionID string) int64 {
	if v, ok := b.budgets[sessionID]; ok {
		return v
	}
	return b.defaultLimit
}
