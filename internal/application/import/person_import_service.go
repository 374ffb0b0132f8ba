package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	peopleapp "github.com/vrm/backend/internal/application/people"
	"github.com/vrm/backend/internal/domain/audit"
	"github.com/vrm/backend/internal/domain/people"
	csvimport "github.com/vrm/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// ConflictMode defines how to handle rows that collide with an existing
// active record carrying the same identity (name plus date of birth).
type ConflictMode string

const (
	// ConflictModeSkip skips rows that conflict with existing records
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeFail records a row error for every conflicting row
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeFail:
		return true
	default:
		return false
	}
}

// TagSeparator splits the tags column into individual tags.
const TagSeparator = ";"

// PersonImportResult represents the outcome of a person import run
type PersonImportResult struct {
	TotalRows     int                  `json:"total_rows"`
	ImportedRows  int                  `json:"imported_rows"`
	SkippedRows   int                  `json:"skipped_rows"`
	ErrorRows     int                  `json:"error_rows"`
	DuplicateRows int                  `json:"duplicate_rows"`
	Errors        []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated   bool                 `json:"is_truncated,omitempty"`
	TotalErrors   int                  `json:"total_errors,omitempty"`
}

// PersonImportService handles person bulk import from CSV files. Every row
// runs through the same validation, sanitization and duplicate detection
// pipeline as a single create; a bad row never aborts the rows around it.
type PersonImportService struct {
	people    *peopleapp.PersonService
	processor *csvimport.ImportProcessor
	sessions  csvimport.SessionStore
	log       *zap.Logger
}

// NewPersonImportService creates a new PersonImportService
func NewPersonImportService(
	personSvc *peopleapp.PersonService,
	processor *csvimport.ImportProcessor,
	sessions csvimport.SessionStore,
	log *zap.Logger,
) *PersonImportService {
	return &PersonImportService{
		people:    personSvc,
		processor: processor,
		sessions:  sessions,
		log:       log,
	}
}

// RequiredHeaders returns the columns a person CSV must carry
func (s *PersonImportService) RequiredHeaders() []string {
	return []string{"first_name", "last_name"}
}

// GetValidationRules returns the validation rules for person import.
// The custom rules delegate to the same domain validators single creates use,
// so a file rejected here would have been rejected row by row anyway.
func (s *PersonImportService) GetValidationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("first_name").Required().String().MinLength(1).MaxLength(people.MaxNameLength).Build(),
		csvimport.Field("middle_name").String().MaxLength(people.MaxNameLength).Build(),
		csvimport.Field("last_name").Required().String().MinLength(1).MaxLength(people.MaxNameLength).Build(),
		csvimport.Field("suffix").String().MaxLength(people.MaxSuffixLength).Build(),
		csvimport.Field("date_of_birth").Date().DateFormat("2006-01-02").Custom(validateDateOfBirth).Build(),
		csvimport.Field("gender").String().Custom(validateGender).Build(),
		csvimport.Field("email").String().MaxLength(people.MaxEmailLength).Custom(validateEmail).Build(),
		csvimport.Field("phone_primary").String().MaxLength(people.MaxPhoneLength).Custom(validatePhoneColumn("phone_primary")).Build(),
		csvimport.Field("phone_secondary").String().MaxLength(people.MaxPhoneLength).Custom(validatePhoneColumn("phone_secondary")).Build(),
		csvimport.Field("street").String().MaxLength(people.MaxStreetLength).Build(),
		csvimport.Field("apartment").String().MaxLength(people.MaxApartmentLength).Build(),
		csvimport.Field("city").String().MaxLength(people.MaxCityLength).Build(),
		csvimport.Field("county").String().MaxLength(people.MaxCountyLength).Build(),
		csvimport.Field("state").String().Custom(validateState).Build(),
		csvimport.Field("zip_code").String().MaxLength(people.MaxZipLength).Custom(validateZipCode).Build(),
		csvimport.Field("occupation").String().MaxLength(people.MaxOccupationLength).Build(),
		csvimport.Field("employer").String().MaxLength(people.MaxEmployerLength).Build(),
		csvimport.Field("tags").String().Build(),
		csvimport.Field("notes").String().MaxLength(people.MaxNotesLength).Build(),
	}
}

func validateDateOfBirth(value string) error {
	dob, perr := people.ParseDateOfBirth(value)
	if perr != nil {
		return perr
	}
	if verr := people.ValidateDateOfBirth(dob); verr != nil {
		return verr
	}
	return nil
}

func validateGender(value string) error {
	if verr := people.ValidateGender(value); verr != nil {
		return verr
	}
	return nil
}

func validateEmail(value string) error {
	if verr := people.ValidateEmail(value, nil); verr != nil {
		return verr
	}
	return nil
}

func validatePhoneColumn(column string) func(string) error {
	return func(value string) error {
		if verr := people.ValidatePhone(column, value); verr != nil {
			return verr
		}
		return nil
	}
}

func validateState(value string) error {
	if verr := people.ValidateState(value); verr != nil {
		return verr
	}
	return nil
}

func validateZipCode(value string) error {
	if verr := people.ValidateZipCode(value); verr != nil {
		return verr
	}
	return nil
}

// Validate parses and validates an uploaded CSV without creating anything.
// The session is stored so its state can be inspected later.
func (s *PersonImportService) Validate(ctx context.Context, session *csvimport.ImportSession, reader io.Reader) (*csvimport.ValidationResult, []*csvimport.Row, error) {
	result, validRows, err := s.processor.Validate(ctx, session, reader, s.GetValidationRules(), s.RequiredHeaders())
	if saveErr := s.sessions.Save(session); saveErr != nil {
		s.log.Warn("failed to save import session", zap.Error(saveErr))
	}
	return result, validRows, err
}

// Import creates people from validated rows. Rows that fail are recorded and
// skipped; validation errors collected earlier carry over into the result.
func (s *PersonImportService) Import(
	ctx context.Context,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
	actx audit.Context,
	mode ConflictMode,
) (*PersonImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, fmt.Errorf("import session must be validated before importing, got state %q", session.State)
	}
	if !mode.IsValid() {
		mode = ConflictModeSkip
	}

	session.UpdateState(csvimport.StateImporting)

	result := &PersonImportResult{
		TotalRows: session.TotalRows,
		ErrorRows: session.ErrorRows,
	}
	rowErrors := csvimport.NewErrorCollection(100)
	for _, e := range session.Errors {
		rowErrors.Add(e)
	}

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		s.importRow(ctx, row, actx, mode, result, rowErrors)
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	session.ErrorRows = result.ErrorRows
	session.Errors = result.Errors
	if result.ErrorRows > 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}
	if err := s.sessions.Save(session); err != nil {
		s.log.Warn("failed to save import session", zap.Error(err))
	}

	s.log.Info("person import finished",
		zap.String("session_id", session.ID.String()),
		zap.String("request_id", actx.RequestID),
		zap.Int("imported", result.ImportedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows),
		zap.Int("duplicates_flagged", result.DuplicateRows))

	return result, nil
}

// ImportFile runs validation and import in one pass
func (s *PersonImportService) ImportFile(
	ctx context.Context,
	fileName string,
	fileSize int64,
	reader io.Reader,
	actx audit.Context,
	mode ConflictMode,
) (*csvimport.ImportSession, *PersonImportResult, error) {
	session := csvimport.NewImportSession(actx.ActorID, fileName, fileSize)
	_, validRows, err := s.Validate(ctx, session, reader)
	if err != nil {
		return session, nil, err
	}
	result, err := s.Import(ctx, session, validRows, actx, mode)
	if err != nil {
		return session, nil, err
	}
	return session, result, nil
}

// Session returns a stored import session, or nil if unknown or expired
func (s *PersonImportService) Session(id uuid.UUID) (*csvimport.ImportSession, error) {
	return s.sessions.Get(id)
}

// SessionsForActor returns recent import sessions started by an actor
func (s *PersonImportService) SessionsForActor(actorID uuid.UUID, limit int) ([]*csvimport.ImportSession, error) {
	return s.sessions.GetByActor(actorID, limit)
}

// importRow creates a single person. Failures are recorded against the row
// and never abort the run.
func (s *PersonImportService) importRow(
	ctx context.Context,
	row *csvimport.Row,
	actx audit.Context,
	mode ConflictMode,
	result *PersonImportResult,
	rowErrors *csvimport.ErrorCollection,
) {
	req := rowToRequest(row)

	created, err := s.people.CreateImported(ctx, req, actx)
	if err != nil {
		var fieldErrs people.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			for field, messages := range fieldErrs {
				for _, msg := range messages {
					rowErrors.AddValidationError(row.LineNumber, field, csvimport.ErrCodeImportValidation, msg)
				}
			}
			result.ErrorRows++
		case errors.Is(err, people.ErrIdentityConflict):
			if mode == ConflictModeSkip {
				result.SkippedRows++
				return
			}
			rowErrors.AddDuplicateError(row.LineNumber, "last_name",
				fmt.Sprintf("%s %s", req.FirstName, req.LastName), true)
			result.ErrorRows++
		default:
			s.log.Error("import row failed",
				zap.Int("line", row.LineNumber),
				zap.String("request_id", actx.RequestID),
				zap.Error(err))
			rowErrors.AddValidationError(row.LineNumber, "", csvimport.ErrCodeImportValidation,
				"failed to save person: "+err.Error())
			result.ErrorRows++
		}
		return
	}

	result.ImportedRows++
	if len(created.Duplicates) > 0 {
		result.DuplicateRows++
	}
}

// rowToRequest maps CSV columns onto the create request. Sanitization and
// normalization happen downstream in the person pipeline.
func rowToRequest(row *csvimport.Row) peopleapp.CreatePersonRequest {
	return peopleapp.CreatePersonRequest{
		FirstName:      row.Get("first_name"),
		MiddleName:     row.Get("middle_name"),
		LastName:       row.Get("last_name"),
		Suffix:         row.Get("suffix"),
		DateOfBirth:    row.Get("date_of_birth"),
		Gender:         row.Get("gender"),
		Email:          row.Get("email"),
		PhonePrimary:   row.Get("phone_primary"),
		PhoneSecondary: row.Get("phone_secondary"),
		Street:         row.Get("street"),
		Apartment:      row.Get("apartment"),
		City:           row.Get("city"),
		County:         row.Get("county"),
		State:          row.Get("state"),
		ZipCode:        row.Get("zip_code"),
		Occupation:     row.Get("occupation"),
		Employer:       row.Get("employer"),
		Tags:           splitTags(row.Get("tags")),
		Notes:          row.Get("notes"),
	}
}

// splitTags splits a semicolon-separated tags column, dropping empty entries
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, TagSeparator)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
