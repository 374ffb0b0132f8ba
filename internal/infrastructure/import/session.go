package csvimport

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ImportState represents the current state of an import session
type ImportState string

const (
	StateCreated    ImportState = "created"
	StateValidating ImportState = "validating"
	StateValidated  ImportState = "validated"
	StateImporting  ImportState = "importing"
	StateCompleted  ImportState = "completed"
	StateFailed     ImportState = "failed"
	StateCancelled  ImportState = "cancelled"
)

// ImportSession tracks one uploaded file through validation and import
type ImportSession struct {
	ID          uuid.UUID        `json:"id"`
	ActorID     uuid.UUID        `json:"actor_id"`
	FileName    string           `json:"file_name"`
	FileSize    int64            `json:"file_size"`
	State       ImportState      `json:"state"`
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewImportSession creates a new import session
func NewImportSession(actorID uuid.UUID, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:        uuid.New(),
		ActorID:   actorID,
		FileName:  fileName,
		FileSize:  fileSize,
		State:     StateCreated,
		CreatedAt: now,
		UpdatedAt: now,
		Preview:   make([]map[string]any, 0),
		Errors:    make([]RowError, 0),
	}
}

// UpdateState updates the session state
func (s *ImportSession) UpdateState(state ImportState) {
	s.State = state
	s.UpdatedAt = time.Now()
	if state == StateCompleted || state == StateFailed || state == StateCancelled {
		now := time.Now()
		s.CompletedAt = &now
	}
}

// SetValidationResult sets the validation result
func (s *ImportSession) SetValidationResult(result *ValidationResult) {
	s.TotalRows = result.TotalRows
	s.ValidRows = result.ValidRows
	s.ErrorRows = result.ErrorRows
	s.Errors = result.Errors
	s.Preview = result.Preview
	s.UpdatedAt = time.Now()
}

// IsValid returns true if the session has no error rows
func (s *ImportSession) IsValid() bool {
	return s.ErrorRows == 0
}

// ImportProcessor validates a CSV stream against field rules
type ImportProcessor struct {
	maxFileSize int64
	maxRows     int
	maxErrors   int
	previewRows int
}

// ProcessorOption is a functional option for ImportProcessor
type ProcessorOption func(*ImportProcessor)

// WithMaxFileSize sets the maximum file size
func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxFileSize = size
	}
}

// WithMaxRows sets the maximum number of rows
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxRows = rows
	}
}

// WithMaxErrors sets the maximum number of errors to collect
func WithMaxErrors(errors int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxErrors = errors
	}
}

// WithPreviewRows sets the number of preview rows
func WithPreviewRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.previewRows = rows
	}
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: 10 * 1024 * 1024,
		maxRows:     100000,
		maxErrors:   100,
		previewRows: 5,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// MaxFileSize returns the configured maximum file size
func (p *ImportProcessor) MaxFileSize() int64 {
	return p.maxFileSize
}

// Validate parses and validates a CSV stream without importing anything.
// It returns the validation result together with the rows that passed,
// so a caller can feed them straight into an import run.
func (p *ImportProcessor) Validate(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule, requiredHeaders []string) (*ValidationResult, []*Row, error) {
	if p.maxFileSize > 0 && session.FileSize > p.maxFileSize {
		session.UpdateState(StateFailed)
		return nil, nil, ErrFileTooLarge
	}

	session.UpdateState(StateValidating)

	parser, err := NewCSVParser(reader)
	if err != nil {
		session.UpdateState(StateFailed)
		return nil, nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(StateFailed)
		return nil, nil, err
	}
	if missing := parser.ValidateHeaders(requiredHeaders); len(missing) > 0 {
		session.UpdateState(StateFailed)
		result := NewValidationResult(session.ID.String())
		errs := NewErrorCollection(p.maxErrors)
		for _, h := range missing {
			errs.Add(NewRowError(1, h, ErrCodeImportMissingHeader, "required column is missing"))
		}
		result.SetErrors(errs)
		session.SetValidationResult(result)
		return result, nil, nil
	}

	fieldValidator := NewFieldValidator(rules, p.maxErrors)
	parseErrors := NewErrorCollection(p.maxErrors)

	result := NewValidationResult(session.ID.String())
	validRows := make([]*Row, 0)
	totalRows := 0
	errorRows := 0

	for {
		select {
		case <-ctx.Done():
			session.UpdateState(StateCancelled)
			return nil, nil, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			errorRows++
			continue
		}

		if row.IsEmpty() {
			continue
		}

		totalRows++
		if totalRows > p.maxRows {
			parseErrors.Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation,
				"exceeded maximum number of rows"))
			break
		}

		if !fieldValidator.ValidateRow(row) {
			errorRows++
			continue
		}

		validRows = append(validRows, row)
		if len(result.Preview) < p.previewRows {
			previewRow := make(map[string]any, len(row.Data))
			for k, v := range row.Data {
				previewRow[k] = v
			}
			result.AddPreview(previewRow)
		}
	}

	allErrors := NewErrorCollection(p.maxErrors)
	for _, e := range parseErrors.Errors() {
		allErrors.Add(e)
	}
	for _, e := range fieldValidator.Errors().Errors() {
		allErrors.Add(e)
	}

	result.SetCounts(totalRows, len(validRows), errorRows)
	result.SetErrors(allErrors)

	session.SetValidationResult(result)
	session.UpdateState(StateValidated)

	return result, validRows, nil
}

// SessionStore interface for storing import sessions
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByActor(actorID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore is an in-memory implementation of SessionStore
type InMemorySessionStore struct {
	sessions map[uuid.UUID]*ImportSession
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewInMemorySessionStore creates a new in-memory session store
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go store.startCleanupLoop()
	return store
}

// startCleanupLoop periodically removes expired sessions
func (s *InMemorySessionStore) startCleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup goroutine
func (s *InMemorySessionStore) Stop() {
	close(s.stopCh)
}

// Save saves a session
func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get retrieves a session by ID. Expired sessions are treated as missing.
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, nil
	}
	return session, nil
}

// GetByActor retrieves sessions started by a given actor
func (s *InMemorySessionStore) GetByActor(actorID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ImportSession
	for _, session := range s.sessions {
		if session.ActorID == actorID && time.Since(session.CreatedAt) <= s.ttl {
			result = append(result, session)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Delete deletes a session by ID
func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup removes expired sessions
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if time.Since(session.CreatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
