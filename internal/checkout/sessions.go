package checkout

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/buyme/internal/catalog"
)

var ErrSessionNotFound = errors.New("checkout session not found")

type session struct {
	mu      sync.Mutex
	modal   Modal
	touched time.Time
}

// Sessions holds open buy-now modals in memory. Each session has its own
// lock so a slow gateway call only blocks its own session.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		items: make(map[string]*session),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

func (s *Sessions) Open(p catalog.Product) string {
	id := uuid.NewString()
	sess := &session{touched: s.now()}
	sess.modal.Open(p)

	s.mu.Lock()
	s.items[id] = sess
	s.mu.Unlock()
	return id
}

// Do runs fn against the session's modal. A session whose modal ends up
// Closed is dropped.
func (s *Sessions) Do(id string, fn func(m *Modal) error) error {
	s.mu.Lock()
	sess, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.mu.Lock()
	live := s.items[id] == sess
	s.mu.Unlock()
	if !live {
		return ErrSessionNotFound
	}

	err := fn(&sess.modal)
	sess.touched = s.now()
	if sess.modal.State() == Closed {
		s.remove(id, sess)
	}
	return err
}

func (s *Sessions) Cancel(id string) error {
	return s.Do(id, func(m *Modal) error {
		m.Cancel()
		return nil
	})
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// went.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.items {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.touched.Before(cutoff) {
			delete(s.items, id)
			n++
		}
		sess.mu.Unlock()
	}
	return n
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) remove(id string, sess *session) {
	s.mu.Lock()
	if s.items[id] == sess {
		delete(s.items, id)
	}
	s.mu.Unlock()
}
