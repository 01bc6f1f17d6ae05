package service

import (
	"errors"
	"sync"
	"time"

	"github.com/auditpro/document-auditor/dto"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAuditInProgress = errors.New("an audit is already running for this session")
)

// Session is the working set of one user: the ledger, the uploaded documents
// and the outcome of the latest audit.
type Session struct {
	ID        string
	CreatedAt time.Time

	rows     []dto.Row
	docs     []dto.FileData
	results  []dto.AuditResult
	failures []dto.AuditError
	report   *dto.AuditReport
	running  bool
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Rows      []dto.Row
	Documents []dto.FileData
	Results   []dto.AuditResult
	Failures  []dto.AuditError
	Report    *dto.AuditReport
	Auditing  bool
}

// SessionStore keeps sessions in memory, keyed by UUID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &Session{ID: id, CreatedAt: time.Now().UTC()}
	s.mu.Unlock()
	return id
}

func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Get(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return Snapshot{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Rows:      append([]dto.Row(nil), sess.rows...),
		Documents: append([]dto.FileData(nil), sess.docs...),
		Results:   append([]dto.AuditResult(nil), sess.results...),
		Failures:  append([]dto.AuditError(nil), sess.failures...),
		Report:    sess.report,
		Auditing:  sess.running,
	}, nil
}

// ReplaceRows swaps in a newly uploaded ledger.
func (s *SessionStore) ReplaceRows(id string, rows []dto.Row) error {
	return s.update(id, func(sess *Session) error {
		sess.rows = rows
		return nil
	})
}

// AppendDocuments adds a batch to the session and returns the new total.
func (s *SessionStore) AppendDocuments(id string, docs []dto.FileData) (int, error) {
	var total int
	err := s.update(id, func(sess *Session) error {
		sess.docs = append(sess.docs, docs...)
		total = len(sess.docs)
		return nil
	})
	return total, err
}

// BeginAudit marks the session as auditing, clears the previous results and
// returns the inputs of the run.
func (s *SessionStore) BeginAudit(id string) ([]dto.Row, []dto.FileData, error) {
	var (
		rows []dto.Row
		docs []dto.FileData
	)
	err := s.update(id, func(sess *Session) error {
		if sess.running {
			return ErrAuditInProgress
		}
		sess.running = true
		sess.results = nil
		sess.failures = nil
		sess.report = nil
		rows = append([]dto.Row(nil), sess.rows...)
		docs = append([]dto.FileData(nil), sess.docs...)
		return nil
	})
	return rows, docs, err
}

// RecordOutcome appends one row outcome while the audit runs.
func (s *SessionStore) RecordOutcome(id string, outcome dto.RowOutcome) error {
	return s.update(id, func(sess *Session) error {
		if outcome.Err != nil {
			sess.failures = append(sess.failures, *outcome.Err)
		} else if outcome.Result != nil {
			sess.results = append(sess.results, *outcome.Result)
		}
		return nil
	})
}

// FinishAudit clears the running flag and stores the report, which may be nil
// when the run failed before the first row.
func (s *SessionStore) FinishAudit(id string, report *dto.AuditReport) error {
	return s.update(id, func(sess *Session) error {
		sess.running = false
		sess.report = report
		return nil
	})
}

// Result returns the result at index in emission order.
func (s *SessionStore) Result(id string, index int) (dto.AuditResult, error) {
	snap, err := s.Get(id)
	if err != nil {
		return dto.AuditResult{}, err
	}
	if index < 0 || index >= len(snap.Results) {
		return dto.AuditResult{}, dto.ErrInvalidResultIndex
	}
	return snap.Results[index], nil
}

func (s *SessionStore) update(id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(sess)
}
