package people

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is the region used when parsing phone numbers without
// an explicit country prefix. Overridable at startup via SetPhoneRegion.
var DefaultPhoneRegion = "US"

// SetPhoneRegion changes the region used for parsing national phone numbers.
// Call once during startup, before any validation runs.
func SetPhoneRegion(region string) {
	if region != "" {
		DefaultPhoneRegion = region
	}
}

// MaxAgeYears caps the implied age of a date of birth. The contract is
// "implied age must not exceed 150 years"; the whole-year arithmetic below is
// exact, not the day-count division the rule was originally stated with.
const MaxAgeYears = 150

// DefaultEmailBlocklist lists domains never accepted for contact email.
var DefaultEmailBlocklist = []string{"example.com", "test.com", "localhost"}

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidatePhone checks that raw parses as a plausible phone number in the
// default region. Empty input is valid (phone numbers are optional).
func ValidatePhone(field, raw string) *ValidationError {
	if raw == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return NewValidationError(field, CodeInvalidPhoneNumber,
			fmt.Sprintf("%q is not a valid phone number", raw))
	}
	return nil
}

// NormalizePhone converts raw to canonical E.164 form when it parses as a
// plausible number, e.g. "(555) 123-4567" -> "+15551234567". Unparseable
// input is returned unchanged: normalization is best-effort, never lossy.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// ValidateZipCode checks NNNNN or NNNNN-NNNN format
func ValidateZipCode(zip string) *ValidationError {
	if zip == "" {
		return nil
	}
	if !zipPattern.MatchString(zip) {
		return NewValidationError("zip_code", CodeInvalidZipCode,
			fmt.Sprintf("%q is not a valid ZIP code (expected NNNNN or NNNNN-NNNN)", zip))
	}
	return nil
}

// ValidateState checks membership in the fixed US state/territory set.
// Comparison is case-insensitive; storage normalizes to uppercase.
func ValidateState(state string) *ValidationError {
	if state == "" {
		return nil
	}
	if !IsValidStateCode(strings.ToUpper(state)) {
		return NewValidationError("state", CodeInvalidStateCode,
			fmt.Sprintf("%q is not a valid US state code", state))
	}
	return nil
}

// ValidateDateOfBirth rejects future dates and implied ages over MaxAgeYears
func ValidateDateOfBirth(dob time.Time) *ValidationError {
	now := time.Now()
	if dob.After(now) {
		return NewValidationError("date_of_birth", CodeInvalidDateOfBirth,
			"date of birth cannot be in the future")
	}
	if ageInYears(dob, now) > MaxAgeYears {
		return NewValidationError("date_of_birth", CodeInvalidDateOfBirth,
			fmt.Sprintf("implied age exceeds %d years", MaxAgeYears))
	}
	return nil
}

// ageInYears computes age in whole years, truncated
func ageInYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// ParseDateOfBirth parses the ISO date form used on the wire
func ParseDateOfBirth(s string) (time.Time, *ValidationError) {
	dob, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, NewValidationError("date_of_birth", CodeInvalidDateOfBirth,
			fmt.Sprintf("%q is not a valid date (expected YYYY-MM-DD)", s))
	}
	return dob, nil
}

// ValidateEmail checks basic shape (an '@' and a dot in the domain part) and
// rejects blocklisted domains. An empty blocklist falls back to the default.
func ValidateEmail(email string, blocklist []string) *ValidationError {
	if email == "" {
		return nil
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return NewValidationError("email", CodeInvalidEmail,
			fmt.Sprintf("%q is not a valid email address", email))
	}
	domain := strings.ToLower(email[at+1:])
	if !strings.Contains(domain, ".") {
		return NewValidationError("email", CodeInvalidEmail,
			fmt.Sprintf("%q is not a valid email address", email))
	}
	if len(blocklist) == 0 {
		blocklist = DefaultEmailBlocklist
	}
	for _, blocked := range blocklist {
		if domain == strings.ToLower(blocked) {
			return NewValidationError("email", CodeInvalidEmail,
				fmt.Sprintf("email domain %q is not accepted", domain))
		}
	}
	return nil
}

// ValidateGender checks membership in the gender enum, case-insensitive
func ValidateGender(s string) *ValidationError {
	if s == "" {
		return nil
	}
	if _, err := ParseGender(s); err != nil {
		return NewValidationError("gender", CodeInvalidGender,
			fmt.Sprintf("%q is not a valid gender (expected M, F, O or U)", s))
	}
	return nil
}
