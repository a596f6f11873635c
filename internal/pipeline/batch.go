package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/entity"
)

var (
	// ErrSessionComplete is returned by wizard operations once every
	// document has been reviewed.
	ErrSessionComplete = errors.New("all documents reviewed")
	// ErrAtFirstDocument is returned by Previous at the start of the batch.
	ErrAtFirstDocument = errors.New("already at the first document")
)

// BatchSession holds one upload batch's review state. In direct mode
// every extracted record is accepted on creation; in verify mode the
// caller walks the documents with Current/Verify/Skip/Previous.
//
// Previous is a positional undo: the cursor steps back one document
// and the most recently accepted record is dropped, whichever
// operation produced it.
type BatchSession struct {
	mu        sync.Mutex
	id        uuid.UUID
	mode      constants.BatchMode
	docs      []Document
	failed    []FailedFile
	accepted  []entity.InvoiceRecord
	cursor    int
	createdAt time.Time
}

// SessionStatus is a point-in-time snapshot safe to serialize.
type SessionStatus struct {
	BatchID   uuid.UUID    `json:"batch_id"`
	Mode      string       `json:"mode"`
	Total     int          `json:"total"`
	Cursor    int          `json:"cursor"`
	Accepted  int          `json:"accepted"`
	Remaining int          `json:"remaining"`
	Done      bool         `json:"done"`
	Failed    []FailedFile `json:"failed"`
}

// NewBatchSession wraps a batch outcome for review. Direct mode accepts
// everything up front, leaving nothing to walk.
func NewBatchSession(outcome *BatchOutcome, mode constants.BatchMode) *BatchSession {
	s := &BatchSession{
		id:        outcome.BatchID,
		mode:      mode,
		docs:      outcome.Documents,
		failed:    outcome.Failed,
		accepted:  []entity.InvoiceRecord{},
		createdAt: time.Now(),
	}
	if mode == constants.BatchModeDirect {
		for _, d := range s.docs {
			s.accepted = append(s.accepted, d.Record)
		}
		s.cursor = len(s.docs)
	}
	return s
}

func (s *BatchSession) ID() uuid.UUID { return s.id }

func (s *BatchSession) Mode() constants.BatchMode { return s.mode }

func (s *BatchSession) CreatedAt() time.Time { return s.createdAt }

// Current returns the document under the cursor.
func (s *BatchSession) Current() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.docs) {
		return Document{}, ErrSessionComplete
	}
	return s.docs[s.cursor], nil
}

// Verify accepts a corrected record for the current document and
// advances. The file name always stays the document's own.
func (s *BatchSession) Verify(rec entity.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.docs) {
		return ErrSessionComplete
	}
	rec.FileName = s.docs[s.cursor].Record.FileName
	if rec.Items == nil {
		rec.Items = []entity.LineItem{}
	}
	s.accepted = append(s.accepted, rec)
	s.cursor++
	return nil
}

// Skip accepts the current document's extracted record unchanged and
// advances.
func (s *BatchSession) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.docs) {
		return ErrSessionComplete
	}
	s.accepted = append(s.accepted, s.docs[s.cursor].Record)
	s.cursor++
	return nil
}

// Previous steps the cursor back one document and drops the last
// accepted record.
func (s *BatchSession) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == 0 {
		return ErrAtFirstDocument
	}
	s.cursor--
	if len(s.accepted) > 0 {
		s.accepted = s.accepted[:len(s.accepted)-1]
	}
	return nil
}

// Done reports whether every document has been reviewed.
func (s *BatchSession) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= len(s.docs)
}

// Remaining counts documents still waiting for review.
func (s *BatchSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs) - s.cursor
}

// Records returns a copy of the accepted records in acceptance order.
func (s *BatchSession) Records() []entity.InvoiceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.InvoiceRecord, len(s.accepted))
	copy(out, s.accepted)
	return out
}

// Documents returns a copy of the extracted documents.
func (s *BatchSession) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// FailedFiles returns a copy of the documents excluded from the batch.
func (s *BatchSession) FailedFiles() []FailedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedFile, len(s.failed))
	copy(out, s.failed)
	return out
}

// Status snapshots the session for API responses.
func (s *BatchSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := make([]FailedFile, len(s.failed))
	copy(failed, s.failed)
	return SessionStatus{
		BatchID:   s.id,
		Mode:      string(s.mode),
		Total:     len(s.docs),
		Cursor:    s.cursor,
		Accepted:  len(s.accepted),
		Remaining: len(s.docs) - s.cursor,
		Done:      s.cursor >= len(s.docs),
		Failed:    failed,
	}
}
