package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/campusnet/internal/domain"
)

// Store keeps the most recent attempts in memory, dropping the oldest once
// max is reached.
type Store struct {
	mu       sync.RWMutex
	max      int
	attempts []domain.Attempt
}

func New(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{
		max:      max,
		attempts: make([]domain.Attempt, 0, min(max, 128)),
	}
}

func (m *Store) Append(ctx context.Context, a *domain.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	m.attempts = append(m.attempts, *a)
	if len(m.attempts) > m.max {
		m.attempts = m.attempts[len(m.attempts)-m.max:]
	}
	return nil
}

func (m *Store) List(ctx context.Context, limit int) ([]domain.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.attempts)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Attempt, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.attempts[i])
	}
	return out, nil
}

func (m *Store) Latest(ctx context.Context) (*domain.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.attempts) == 0 {
		return nil, nil
	}
	a := m.attempts[len(m.attempts)-1]
	return &a, nil
}
