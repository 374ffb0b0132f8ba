package people

import "time"

// MatchRule identifies one independent duplicate-match scenario. The final
// query is the OR of every rule whose field precondition holds.
type MatchRule int

const (
	// MatchNameAndBirthDate matches on case-insensitive first+last name plus
	// exact date of birth.
	MatchNameAndBirthDate MatchRule = iota
	// MatchEmail matches on case-insensitive email.
	MatchEmail
	// MatchPhonePrimary matches on the exact primary phone number.
	MatchPhonePrimary
	// MatchPhoneSecondary matches on the exact secondary phone number.
	MatchPhoneSecondary
	// MatchNameAndAddress matches on case-insensitive first+last name plus
	// case-insensitive street plus exact ZIP.
	MatchNameAndAddress
)

// String names the rule for logging
func (r MatchRule) String() string {
	switch r {
	case MatchNameAndBirthDate:
		return "name+dob"
	case MatchEmail:
		return "email"
	case MatchPhonePrimary:
		return "phone_primary"
	case MatchPhoneSecondary:
		return "phone_secondary"
	case MatchNameAndAddress:
		return "name+address"
	default:
		return "unknown"
	}
}

// DuplicateCriteria carries the sanitized candidate fields used for duplicate
// detection. Phone numbers are expected in canonical form and email in
// lowercase; the repository compares names, email and street
// case-insensitively regardless.
type DuplicateCriteria struct {
	FirstName      string
	LastName       string
	DateOfBirth    *time.Time
	Email          string
	PhonePrimary   string
	PhoneSecondary string
	Street         string
	ZipCode        string
}

// CriteriaFromAttributes builds detection criteria from sanitized attributes
func CriteriaFromAttributes(attrs PersonAttributes) DuplicateCriteria {
	return DuplicateCriteria{
		FirstName:      attrs.FirstName,
		LastName:       attrs.LastName,
		DateOfBirth:    attrs.DateOfBirth,
		Email:          attrs.Email,
		PhonePrimary:   attrs.PhonePrimary,
		PhoneSecondary: attrs.PhoneSecondary,
		Street:         attrs.Street,
		ZipCode:        attrs.ZipCode,
	}
}

// Validate enforces the detection precondition: both name components must be
// present, otherwise matching would run on partial identity data.
func (c DuplicateCriteria) Validate() error {
	if c.FirstName == "" || c.LastName == "" {
		return ErrMissingNameForDuplicateCheck
	}
	return nil
}

// Rules returns the match scenarios that can be constructed from the present
// fields, in fixed priority order. Each rule's precondition lives here, next
// to the rule it guards, so scenarios can be added or removed independently.
// An empty result is valid and yields an empty match set, not an error.
func (c DuplicateCriteria) Rules() []MatchRule {
	rules := make([]MatchRule, 0, 5)
	if c.DateOfBirth != nil {
		rules = append(rules, MatchNameAndBirthDate)
	}
	if c.Email != "" {
		rules = append(rules, MatchEmail)
	}
	if c.PhonePrimary != "" {
		rules = append(rules, MatchPhonePrimary)
	}
	if c.PhoneSecondary != "" {
		rules = append(rules, MatchPhoneSecondary)
	}
	if c.Street != "" && c.ZipCode != "" {
		rules = append(rules, MatchNameAndAddress)
	}
	return rules
}
