package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/taxlens/invoice-analyzer/internal/pipeline"
)

// sessionEntry tracks one live batch session plus whether its accepted
// records have been written to the invoices table. Verify-mode batches
// persist once, when the last document is reviewed; walking back with
// Previous after that point never rewrites persisted rows.
type sessionEntry struct {
	session   *pipeline.BatchSession
	persisted bool
}

// SessionStore is the explicit owner of live batch sessions. It is a
// plain mutex-guarded map: sessions live for the life of the process.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*sessionEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{entries: map[uuid.UUID]*sessionEntry{}}
}

func (s *SessionStore) Put(sess *pipeline.BatchSession, persisted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID()] = &sessionEntry{session: sess, persisted: persisted}
}

func (s *SessionStore) Get(id uuid.UUID) (*pipeline.BatchSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// MarkPersisted flips the persisted flag and reports whether this call
// did the flipping, so exactly one caller writes the batch to the DB.
func (s *SessionStore) MarkPersisted(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.persisted {
		return false
	}
	e.persisted = true
	return true
}

func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}
