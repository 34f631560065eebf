package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-equation-solver/internal/observability"
)

var (
	// ErrNotFound is returned for an unknown or evicted session id.
	ErrNotFound = errors.New("session not found")

	// ErrStoreFull is returned by Create once the live session limit is hit.
	ErrStoreFull = errors.New("too many active sessions")
)

// Store keeps sessions in memory, keyed by UUID.
type Store struct {
	recognizer  Recognizer
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

type StoreOption func(*Store)

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) { s.maxSessions = n }
}

// NewStore returns an empty store. Sessions without activity for ttl are
// removed by Evict; a zero ttl keeps them until deleted.
func NewStore(recognizer Recognizer, ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		recognizer: recognizer,
		ttl:        ttl,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new Idle session. At the limit it first evicts
// expired sessions and fails with ErrStoreFull if none were.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	if s.full() && s.Evict(ctx) == 0 {
		return nil, ErrStoreFull
	}

	sess := newSession(uuid.New().String(), s.recognizer, s.now)

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return nil, ErrStoreFull
	}
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	activeSessions.Add(ctx, 1)
	return sess, nil
}

func (s *Store) full() bool {
	if s.maxSessions <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions) >= s.maxSessions
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	sess.Close()
	activeSessions.Add(ctx, -1)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict removes sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Store) Evict(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastActivity().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	if n := len(expired); n > 0 {
		activeSessions.Add(ctx, int64(-n))
		observability.LoggerWithTrace(ctx).Info("evicted idle sessions", zap.Int("count", n))
	}
	return len(expired)
}

// Run evicts idle sessions every interval until ctx is done, then closes
// every remaining session.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.Evict(ctx)
		}
	}
}

func (s *Store) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
