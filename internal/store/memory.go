package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/registry-client/internal/submission"
)

// MemoryStore is an in-memory implementation of submission.Repository.
type MemoryStore struct {
	mu          sync.RWMutex
	submissions map[submission.ID]submission.Submission
}

// NewMemoryStore creates a new in-memory submission store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		submissions: make(map[submission.ID]submission.Submission),
	}
}

func (m *MemoryStore) Save(_ context.Context, s *submission.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.submissions[s.ID]; exists {
		return nil
	}

	m.submissions[s.ID] = *s

	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id submission.ID) (*submission.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.submissions[id]
	if !ok {
		return nil, submission.ErrNotFound
	}

	return &s, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id submission.ID, outcome submission.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.submissions[id]
	if !ok {
		return submission.ErrNotFound
	}

	s.Status = outcome.Status
	s.RegistryID = outcome.RegistryID
	s.Error = outcome.Error
	s.UpdatedAt = time.Now()
	m.submissions[id] = s

	return nil
}

var _ submission.Repository = (*MemoryStore)(nil)
