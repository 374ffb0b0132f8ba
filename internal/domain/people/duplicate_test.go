package people

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateCriteriaValidate(t *testing.T) {
	t.Run("requires both name components", func(t *testing.T) {
		assert.ErrorIs(t, DuplicateCriteria{LastName: "Smith"}.Validate(), ErrMissingNameForDuplicateCheck)
		assert.ErrorIs(t, DuplicateCriteria{FirstName: "Jane"}.Validate(), ErrMissingNameForDuplicateCheck)
		assert.ErrorIs(t, DuplicateCriteria{Email: "x@y.com"}.Validate(), ErrMissingNameForDuplicateCheck)
	})

	t.Run("passes with both names", func(t *testing.T) {
		assert.NoError(t, DuplicateCriteria{FirstName: "Jane", LastName: "Smith"}.Validate())
	})
}

func TestDuplicateCriteriaRules(t *testing.T) {
	dob := time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC)

	t.Run("name only yields no rules", func(t *testing.T) {
		c := DuplicateCriteria{FirstName: "Jane", LastName: "Smith"}
		assert.Empty(t, c.Rules())
	})

	t.Run("each optional field enables its rule", func(t *testing.T) {
		c := DuplicateCriteria{FirstName: "Jane", LastName: "Smith", DateOfBirth: &dob}
		assert.Equal(t, []MatchRule{MatchNameAndBirthDate}, c.Rules())

		c = DuplicateCriteria{FirstName: "Jane", LastName: "Smith", Email: "jane@city.org"}
		assert.Equal(t, []MatchRule{MatchEmail}, c.Rules())

		c = DuplicateCriteria{FirstName: "Jane", LastName: "Smith", PhonePrimary: "+15551234567"}
		assert.Equal(t, []MatchRule{MatchPhonePrimary}, c.Rules())

		c = DuplicateCriteria{FirstName: "Jane", LastName: "Smith", PhoneSecondary: "+15557654321"}
		assert.Equal(t, []MatchRule{MatchPhoneSecondary}, c.Rules())
	})

	t.Run("address rule needs street and zip together", func(t *testing.T) {
		c := DuplicateCriteria{FirstName: "Jane", LastName: "Smith", Street: "123 Main St"}
		assert.Empty(t, c.Rules())

		c.ZipCode = "62701"
		assert.Equal(t, []MatchRule{MatchNameAndAddress}, c.Rules())
	})

	t.Run("rules keep fixed priority order", func(t *testing.T) {
		c := DuplicateCriteria{
			FirstName:      "Jane",
			LastName:       "Smith",
			DateOfBirth:    &dob,
			Email:          "jane@city.org",
			PhonePrimary:   "+15551234567",
			PhoneSecondary: "+15557654321",
			Street:         "123 Main St",
			ZipCode:        "62701",
		}
		require.Equal(t, []MatchRule{
			MatchNameAndBirthDate,
			MatchEmail,
			MatchPhonePrimary,
			MatchPhoneSecondary,
			MatchNameAndAddress,
		}, c.Rules())
	})
}

func TestCriteriaFromAttributes(t *testing.T) {
	dob := time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC)
	attrs := PersonAttributes{
		FirstName:    "Jane",
		LastName:     "Smith",
		DateOfBirth:  &dob,
		Email:        "jane@city.org",
		PhonePrimary: "+15551234567",
		Street:       "123 Main St",
		ZipCode:      "62701",
	}
	c := CriteriaFromAttributes(attrs)
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "jane@city.org", c.Email)
	assert.Equal(t, &dob, c.DateOfBirth)
	assert.Equal(t, "62701", c.ZipCode)
}
