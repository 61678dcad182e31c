// Package session keeps per-visitor state in memory, keyed by an opaque token.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

var ErrNotFound = errors.New("session not found")

// MaxMessages bounds the chat history kept per session.
const MaxMessages = 100

// Store is a concurrency-safe in-memory session table.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*model.Session), now: time.Now}
}

// Create starts an anonymous session on the landing page.
func (s *Store) Create() *model.Session {
	now := s.now()
	sess := &model.Session{
		Token:     uuid.NewString(),
		Page:      model.PageLanding,
		CreatedAt: now,
		SeenAt:    now,
	}
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return copySession(sess)
}

// Get returns a copy of the session and refreshes its last-seen time.
func (s *Store) Get(token string) (*model.Session, error) {
	var out *model.Session
	err := s.update(token, func(sess *model.Session) {
		out = copySession(sess)
	})
	return out, err
}

// SetPage moves the session to page.
func (s *Store) SetPage(token string, page model.Page) error {
	return s.update(token, func(sess *model.Session) { sess.Page = page })
}

// Login binds the session to email and moves it to the dashboard.
func (s *Store) Login(token, email string) error {
	return s.update(token, func(sess *model.Session) {
		sess.Email = email
		sess.Page = model.PageDashboard
		sess.Messages = nil
	})
}

// Logout clears the user and the chat and returns to the landing page.
func (s *Store) Logout(token string) error {
	return s.update(token, func(sess *model.Session) {
		sess.Email = ""
		sess.Page = model.PageLanding
		sess.LastSymbol = ""
		sess.Messages = nil
	})
}

// SetSymbol records the last resolved ticker.
func (s *Store) SetSymbol(token, symbol string) error {
	return s.update(token, func(sess *model.Session) { sess.LastSymbol = symbol })
}

// AppendMessage adds chat turns, dropping the oldest beyond MaxMessages.
func (s *Store) AppendMessage(token string, msgs ...model.ChatMessage) error {
	return s.update(token, func(sess *model.Session) {
		sess.Messages = append(sess.Messages, msgs...)
		if n := len(sess.Messages); n > MaxMessages {
			sess.Messages = append([]model.ChatMessage(nil), sess.Messages[n-MaxMessages:]...)
		}
	})
}

// Delete drops a session. Unknown tokens are ignored.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Purge removes sessions not seen for longer than idle and returns how many.
func (s *Store) Purge(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, sess := range s.sessions {
		if sess.SeenAt.Before(cutoff) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) update(token string, fn func(*model.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	sess.SeenAt = s.now()
	fn(sess)
	return nil
}

func copySession(sess *model.Session) *model.Session {
	c := *sess
	c.Messages = append([]model.ChatMessage(nil), sess.Messages...)
	return &c
}
