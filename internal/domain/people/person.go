package people

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/shared"
)

// Gender is the closed gender enum, stored as a single uppercase letter
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderOther   Gender = "O"
	GenderUnknown Gender = "U"
)

// ParseGender normalizes a raw gender value to the enum. Empty input maps to
// GenderUnknown.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	case GenderOther:
		return GenderOther, nil
	case GenderUnknown, "":
		return GenderUnknown, nil
	default:
		return "", shared.NewDomainError(CodeInvalidGender, "invalid gender value")
	}
}

// Field length limits
const (
	MaxNameLength       = 100
	MaxSuffixLength     = 10
	MaxEmailLength      = 200
	MaxPhoneLength      = 50
	MaxStreetLength     = 200
	MaxApartmentLength  = 50
	MaxCityLength       = 100
	MaxCountyLength     = 100
	MaxZipLength        = 10
	MaxOccupationLength = 200
	MaxEmployerLength   = 200
	MaxTagLength        = 50
	MaxNotesLength      = 10000
)

// Person is the canonical constituent record and the aggregate root of the
// people context. Instances are created exclusively through the application
// service so that every record has passed sanitization and validation.
type Person struct {
	shared.AuditedAggregateRoot
	FirstName      string
	MiddleName     string
	LastName       string
	Suffix         string
	DateOfBirth    *time.Time
	Gender         Gender
	Email          string
	PhonePrimary   string
	PhoneSecondary string
	Street         string
	Apartment      string
	City           string
	County         string
	State          string
	ZipCode        string
	Occupation     string
	Employer       string
	Tags           []string
	Notes          string
	IsActive       bool
}

// PersonAttributes carries the already sanitized and normalized field values
// used to construct or update a Person. Optional fields are empty strings or
// nil; there is no hidden map of loose keys.
type PersonAttributes struct {
	FirstName      string
	MiddleName     string
	LastName       string
	Suffix         string
	DateOfBirth    *time.Time
	Gender         Gender
	Email          string
	PhonePrimary   string
	PhoneSecondary string
	Street         string
	Apartment      string
	City           string
	County         string
	State          string
	ZipCode        string
	Occupation     string
	Employer       string
	Tags           []string
	Notes          string
}

// NewPerson creates a new active Person from sanitized attributes.
// Model-level validation runs here as defense in depth: rules not covered by
// the per-field validators (required names, length caps, enum membership)
// are enforced even if a caller skips the service-level validation.
func NewPerson(attrs PersonAttributes, createdBy uuid.UUID) (*Person, error) {
	p := &Person{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		IsActive:             true,
	}
	p.apply(attrs)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// apply copies attributes onto the person, normalizing the enum defaults
func (p *Person) apply(attrs PersonAttributes) {
	p.FirstName = attrs.FirstName
	p.MiddleName = attrs.MiddleName
	p.LastName = attrs.LastName
	p.Suffix = attrs.Suffix
	p.DateOfBirth = attrs.DateOfBirth
	p.Gender = attrs.Gender
	if p.Gender == "" {
		p.Gender = GenderUnknown
	}
	p.Email = strings.ToLower(attrs.Email)
	p.PhonePrimary = attrs.PhonePrimary
	p.PhoneSecondary = attrs.PhoneSecondary
	p.Street = attrs.Street
	p.Apartment = attrs.Apartment
	p.City = attrs.City
	p.County = attrs.County
	p.State = strings.ToUpper(attrs.State)
	p.ZipCode = attrs.ZipCode
	p.Occupation = attrs.Occupation
	p.Employer = attrs.Employer
	p.Tags = NormalizeTags(attrs.Tags)
	p.Notes = attrs.Notes
}

// Validate enforces the model-level invariants. It returns FieldErrors so
// violations from several fields surface together.
func (p *Person) Validate() error {
	errs := FieldErrors{}

	if strings.TrimSpace(p.FirstName) == "" {
		errs.Add("first_name", "first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs.Add("last_name", "last name is required")
	}
	if p.CreatedBy == uuid.Nil {
		errs.Add("created_by", "creating user is required")
	}

	checkLen := func(field, value string, max int) {
		if len([]rune(value)) > max {
			errs.Add(field, "value is too long")
		}
	}
	checkLen("first_name", p.FirstName, MaxNameLength)
	checkLen("middle_name", p.MiddleName, MaxNameLength)
	checkLen("last_name", p.LastName, MaxNameLength)
	checkLen("suffix", p.Suffix, MaxSuffixLength)
	checkLen("email", p.Email, MaxEmailLength)
	checkLen("phone_primary", p.PhonePrimary, MaxPhoneLength)
	checkLen("phone_secondary", p.PhoneSecondary, MaxPhoneLength)
	checkLen("street", p.Street, MaxStreetLength)
	checkLen("apartment", p.Apartment, MaxApartmentLength)
	checkLen("city", p.City, MaxCityLength)
	checkLen("county", p.County, MaxCountyLength)
	checkLen("zip_code", p.ZipCode, MaxZipLength)
	checkLen("occupation", p.Occupation, MaxOccupationLength)
	checkLen("employer", p.Employer, MaxEmployerLength)
	checkLen("notes", p.Notes, MaxNotesLength)

	if p.State != "" && !IsValidStateCode(p.State) {
		errs.Add("state", "invalid US state code")
	}
	if p.ZipCode != "" {
		errs.AddError(ValidateZipCode(p.ZipCode))
	}
	if _, err := ParseGender(string(p.Gender)); err != nil {
		errs.Add("gender", "invalid gender value")
	}
	if p.DateOfBirth != nil {
		errs.AddError(ValidateDateOfBirth(*p.DateOfBirth))
	}
	for _, tag := range p.Tags {
		if len([]rune(tag)) > MaxTagLength {
			errs.Add("tags", "tag is too long")
			break
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Update replaces the person's attributes with a new sanitized set and
// re-runs model validation. The version is bumped for optimistic locking.
func (p *Person) Update(attrs PersonAttributes) error {
	previous := *p
	p.apply(attrs)
	if err := p.Validate(); err != nil {
		*p = previous
		return err
	}
	p.touch()
	return nil
}

// Deactivate soft-deletes the person. Deactivated records are excluded from
// duplicate detection and default listings but never physically removed.
func (p *Person) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Person is already inactive")
	}
	p.IsActive = false
	p.touch()
	return nil
}

// Reactivate restores a soft-deleted person
func (p *Person) Reactivate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Person is already active")
	}
	p.IsActive = true
	p.touch()
	return nil
}

// FullName returns the display name, skipping empty components
func (p *Person) FullName() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{p.FirstName, p.MiddleName, p.LastName, p.Suffix} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func (p *Person) touch() {
	p.Touch()
	p.IncrementVersion()
}

// NormalizeTags trims whitespace, drops empties and deduplicates while
// preserving first-seen order
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
