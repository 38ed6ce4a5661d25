package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

// Store keeps sessions in memory. Sessions idle longer than the TTL are
// treated as missing and removed by Sweep. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]State
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDFunc replaces the session ID generator.
func WithIDFunc(f func() string) StoreOption {
	return func(s *Store) { s.newID = f }
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store. A ttl of 0 disables expiry.
func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]State),
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session.
func (s *Store) Create() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := NewState(s.newID(), s.now())
	s.sessions[st.ID] = st
	return st
}

// Get returns the session with id.
func (s *Store) Get(id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok || s.expired(st) {
		return State{}, errors.Wrapf(errors.ErrSessionNotFound, "session %q", id)
	}
	return st, nil
}

// Update applies fn to the session under the store lock and saves the
// result unless fn fails.
func (s *Store) Update(id string, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok || s.expired(st) {
		return State{}, errors.Wrapf(errors.ErrSessionNotFound, "session %q", id)
	}
	next, err := fn(st)
	if err != nil {
		return st, err
	}
	next.ID = st.ID
	next.Updated = s.now()
	s.sessions[id] = next
	return next, nil
}

// Dispatch reduces a into the session.
func (s *Store) Dispatch(id string, a Action) (State, error) {
	return s.Update(id, func(st State) (State, error) {
		return Reduce(st, a)
	})
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, including expired ones not
// yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.sessions {
		if s.expired(st) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (s *Store) expired(st State) bool {
	return s.ttl > 0 && s.now().Sub(st.Updated) >= s.ttl
}
