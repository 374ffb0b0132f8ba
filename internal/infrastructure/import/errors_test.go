package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowError_Error(t *testing.T) {
	withColumn := NewRowError(5, "email", ErrCodeImportValidation, "invalid email format")
	assert.Equal(t, "row 5, column 'email': invalid email format", withColumn.Error())

	rowOnly := NewRowError(10, "", ErrCodeImportCSVParsing, "malformed row")
	assert.Equal(t, "row 10: malformed row", rowOnly.Error())

	withValue := NewRowErrorWithValue(3, "phone_primary", ErrCodeImportPatternMismatch, "invalid phone", "abc123")
	assert.Equal(t, "abc123", withValue.Value)
	assert.Equal(t, 3, withValue.Row)
	assert.Equal(t, "phone_primary", withValue.Column)
}

func TestErrorCollection_Cap(t *testing.T) {
	ec := NewErrorCollection(3)
	for i := 1; i <= 5; i++ {
		ec.Add(NewRowError(i, "col", ErrCodeImportValidation, "error"))
	}

	assert.Equal(t, 3, ec.Count(), "retained errors stop at the cap")
	assert.Equal(t, 5, ec.TotalCount(), "total keeps counting past the cap")
	assert.True(t, ec.HasErrors())
	assert.True(t, ec.IsTruncated())

	under := NewErrorCollection(10)
	under.Add(NewRowError(1, "col", ErrCodeImportValidation, "error"))
	assert.False(t, under.IsTruncated())
}

func TestErrorCollection_ZeroCapUsesDefault(t *testing.T) {
	ec := NewErrorCollection(0)
	for i := 0; i < defaultMaxErrors+1; i++ {
		ec.Add(NewRowError(i, "col", ErrCodeImportValidation, "error"))
	}
	assert.Equal(t, defaultMaxErrors, ec.Count())
	assert.True(t, ec.IsTruncated())
}

func TestErrorCollection_HelperCodes(t *testing.T) {
	ec := NewErrorCollection(10)

	ec.AddRequiredError(1, "first_name")
	ec.AddTypeError(2, "date_of_birth", "date (YYYY-MM-DD)", "not-a-date")
	ec.AddLengthError(3, "suffix", 1, 10)
	ec.AddRangeError(4, "age", 0, 150)
	ec.AddPatternError(5, "zip_code", "ZIP code", "xyz")
	ec.AddDuplicateError(6, "email", "jane@example.com", false)
	ec.AddDuplicateError(7, "email", "john@example.com", true)

	wantCodes := []string{
		ErrCodeImportRequiredField,
		ErrCodeImportInvalidType,
		ErrCodeImportInvalidLength,
		ErrCodeImportInvalidRange,
		ErrCodeImportPatternMismatch,
		ErrCodeImportDuplicateInFile,
		ErrCodeImportDuplicateInDB,
	}
	got := ec.Errors()
	require.Len(t, got, len(wantCodes))
	for i, want := range wantCodes {
		assert.Equal(t, want, got[i].Code, "error %d", i)
	}

	assert.Contains(t, got[0].Message, "first_name")
	assert.Equal(t, "not-a-date", got[1].Value)
	assert.Contains(t, got[5].Message, "found in file")
	assert.Contains(t, got[6].Message, "already exists in database")
}

func TestErrorCollection_LengthMessages(t *testing.T) {
	cases := []struct {
		name     string
		min, max int
		want     string
	}{
		{"both bounds", 1, 50, "length must be between 1 and 50"},
		{"max only", 0, 100, "length must be at most 100"},
		{"min only", 5, 0, "length must be at least 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ec := NewErrorCollection(10)
			ec.AddLengthError(1, "field", tc.min, tc.max)
			require.Len(t, ec.Errors(), 1)
			assert.Equal(t, tc.want, ec.Errors()[0].Message)
		})
	}
}

func TestErrorCollection_ClearAndString(t *testing.T) {
	ec := NewErrorCollection(10)
	ec.Add(NewRowError(1, "first_name", ErrCodeImportRequiredField, "field is required"))
	ec.Add(NewRowError(2, "email", ErrCodeImportValidation, "invalid email"))

	s := ec.String()
	assert.Contains(t, s, "2 error(s) found")
	assert.Contains(t, s, "row 1, column 'first_name'")
	assert.Contains(t, s, "row 2, column 'email'")

	ec.Clear()
	assert.False(t, ec.HasErrors())
	assert.Equal(t, 0, ec.Count())
	assert.Equal(t, "no errors", ec.String())
}

func TestValidationResult(t *testing.T) {
	vr := NewValidationResult("val-1")
	assert.Equal(t, "val-1", vr.ValidationID)
	assert.Empty(t, vr.Errors)
	assert.Empty(t, vr.Preview)

	vr.SetCounts(100, 95, 5)
	assert.Equal(t, 100, vr.TotalRows)
	assert.Equal(t, 95, vr.ValidRows)
	assert.Equal(t, 5, vr.ErrorRows)
	assert.False(t, vr.IsValid())

	vr.SetCounts(100, 100, 0)
	assert.True(t, vr.IsValid())
}

func TestValidationResult_PreviewCap(t *testing.T) {
	vr := NewValidationResult("val-2")
	for i := 0; i < previewRows*2; i++ {
		vr.AddPreview(map[string]any{"row": i})
	}
	assert.Len(t, vr.Preview, previewRows)
}

func TestValidationResult_SetErrors(t *testing.T) {
	ec := NewErrorCollection(5)
	for i := 0; i < 10; i++ {
		ec.Add(NewRowError(i, "col", ErrCodeImportValidation, "error"))
	}

	vr := NewValidationResult("val-3")
	vr.SetErrors(ec)

	assert.Len(t, vr.Errors, 5)
	assert.True(t, vr.IsTruncated)
	assert.Equal(t, 10, vr.TotalErrors)
}
