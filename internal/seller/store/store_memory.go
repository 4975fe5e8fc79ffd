package store

import (
	"context"
	"sync"

	id "agora/pkg/domain"
)

// InMemory keeps the audit trail in process memory. Used in tests and when
// no database is configured.
type InMemory struct {
	mu   sync.RWMutex
	apps []Application
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Save(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps = append(s.apps, app)
	return nil
}

// FindByUser returns the user's submission history, oldest first. Copies are
// returned so callers cannot mutate the trail.
func (s *InMemory) FindByUser(_ context.Context, userID id.UserID) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Application
	for _, app := range s.apps {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	return out, nil
}
