package memory

import (
	"context"
	"sync"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

// SessionStore keeps the dashboard state for the lifetime of the process.
// Every transition goes through domain.Reduce under a single lock, so readers
// never see a half-applied event.
type SessionStore struct {
	mu    sync.RWMutex
	state domain.State
}

func NewSessionStore(shipments []domain.Shipment) (*SessionStore, error) {
	state, err := domain.NewState(shipments)
	if err != nil {
		return nil, err
	}
	return &SessionStore{state: state}, nil
}

func (s *SessionStore) Snapshot(ctx context.Context) (domain.State, error) {
	if err := ctx.Err(); err != nil {
		return domain.State{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), nil
}

func (s *SessionStore) Apply(_ context.Context, ev domain.Event) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := domain.Reduce(s.state, ev)
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	return next.Clone(), nil
}
