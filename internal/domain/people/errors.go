package people

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vrm/backend/internal/domain/shared"
)

// Validation error codes for individual fields
const (
	CodeRequiredField      = "REQUIRED_FIELD"
	CodeFieldTooLong       = "FIELD_TOO_LONG"
	CodeInvalidPhoneNumber = "INVALID_PHONE_NUMBER"
	CodeInvalidZipCode     = "INVALID_ZIP_CODE"
	CodeInvalidStateCode   = "INVALID_STATE_CODE"
	CodeInvalidDateOfBirth = "INVALID_DATE_OF_BIRTH"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeInvalidGender      = "INVALID_GENDER"
)

// Errors that are not tied to a single submitted field
var (
	// ErrMissingNameForDuplicateCheck is returned when duplicate detection is
	// attempted without both name components. This is a caller error, not a
	// user input error: partial identity data cannot be matched.
	ErrMissingNameForDuplicateCheck = shared.NewDomainError(
		"DUPLICATE_CHECK_MISSING_NAME",
		"first_name and last_name are required for duplicate detection")

	// ErrIdentityConflict is the user-facing translation of the storage-level
	// uniqueness constraint on (first_name, last_name, date_of_birth).
	ErrIdentityConflict = shared.NewDomainError(
		"IDENTITY_CONFLICT",
		"A person with this name and date of birth already exists")
)

// ValidationError is a typed validation failure for a single field
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new field validation error
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// FieldErrors collects validation messages keyed by field name.
// Validation is exhaustive: every field is checked and every violation
// recorded, so the caller gets the complete picture in one round trip.
type FieldErrors map[string][]string

// Add records a message for a field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// AddError records a typed validation error
func (e FieldErrors) AddError(err *ValidationError) {
	if err != nil {
		e.Add(err.Field, err.Message)
	}
}

// HasErrors reports whether any violation was recorded
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the violated field names in sorted order
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Error implements the error interface with a deterministic summary
func (e FieldErrors) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range e.Fields() {
		b.WriteString("; ")
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(strings.Join(e[f], ", "))
	}
	return b.String()
}
