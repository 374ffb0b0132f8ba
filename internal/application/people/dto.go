package people

import (
	"time"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/people"
)

// CreatePersonRequest carries the raw, unsanitized field values submitted by
// a caller (web form, import row, API client). Every member is explicitly
// optional except the two name components; there is no loose field map.
type CreatePersonRequest struct {
	FirstName      string   `json:"first_name"`
	MiddleName     string   `json:"middle_name"`
	LastName       string   `json:"last_name"`
	Suffix         string   `json:"suffix"`
	DateOfBirth    string   `json:"date_of_birth"` // YYYY-MM-DD
	Gender         string   `json:"gender"`
	Email          string   `json:"email"`
	PhonePrimary   string   `json:"phone_primary"`
	PhoneSecondary string   `json:"phone_secondary"`
	Street         string   `json:"street"`
	Apartment      string   `json:"apartment"`
	City           string   `json:"city"`
	County         string   `json:"county"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	Occupation     string   `json:"occupation"`
	Employer       string   `json:"employer"`
	Tags           []string `json:"tags"`
	Notes          string   `json:"notes"`
}

// UpdatePersonRequest reuses the creation shape; updates re-run the same
// validation and sanitization pipeline.
type UpdatePersonRequest = CreatePersonRequest

// PersonResponse is the application-level view of a person record
type PersonResponse struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	MiddleName     string    `json:"middle_name,omitempty"`
	LastName       string    `json:"last_name"`
	Suffix         string    `json:"suffix,omitempty"`
	FullName       string    `json:"full_name"`
	DateOfBirth    string    `json:"date_of_birth,omitempty"`
	Gender         string    `json:"gender"`
	Email          string    `json:"email,omitempty"`
	PhonePrimary   string    `json:"phone_primary,omitempty"`
	PhoneSecondary string    `json:"phone_secondary,omitempty"`
	Street         string    `json:"street,omitempty"`
	Apartment      string    `json:"apartment,omitempty"`
	City           string    `json:"city,omitempty"`
	County         string    `json:"county,omitempty"`
	State          string    `json:"state,omitempty"`
	ZipCode        string    `json:"zip_code,omitempty"`
	Occupation     string    `json:"occupation,omitempty"`
	Employer       string    `json:"employer,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// DuplicateMatch is the slim view of a suspected duplicate returned with
// creation results and duplicate checks
type DuplicateMatch struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Email       string    `json:"email,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
}

// CreatePersonResult pairs the created record with the advisory duplicate
// list from the same operation. Duplicates never block creation here; the
// two-phase confirmation flow lives with the caller.
type CreatePersonResult struct {
	Person     PersonResponse   `json:"person"`
	Duplicates []DuplicateMatch `json:"duplicates,omitempty"`
}

// ListPersonsFilter carries list/search parameters
type ListPersonsFilter struct {
	Page            int
	PageSize        int
	OrderBy         string
	OrderDir        string
	Search          string
	State           string
	City            string
	Gender          string
	Tag             string
	IncludeInactive bool
}

// ToPersonResponse converts a domain person to its response form
func ToPersonResponse(p *people.Person) PersonResponse {
	resp := PersonResponse{
		ID:             p.ID,
		FirstName:      p.FirstName,
		MiddleName:     p.MiddleName,
		LastName:       p.LastName,
		Suffix:         p.Suffix,
		FullName:       p.FullName(),
		Gender:         string(p.Gender),
		Email:          p.Email,
		PhonePrimary:   p.PhonePrimary,
		PhoneSecondary: p.PhoneSecondary,
		Street:         p.Street,
		Apartment:      p.Apartment,
		City:           p.City,
		County:         p.County,
		State:          p.State,
		ZipCode:        p.ZipCode,
		Occupation:     p.Occupation,
		Employer:       p.Employer,
		Tags:           p.Tags,
		Notes:          p.Notes,
		IsActive:       p.IsActive,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.Format("2006-01-02")
	}
	return resp
}

// ToDuplicateMatch converts a domain person to the slim duplicate view
func ToDuplicateMatch(p *people.Person) DuplicateMatch {
	m := DuplicateMatch{
		ID:       p.ID,
		FullName: p.FullName(),
		Email:    p.Email,
		City:     p.City,
		State:    p.State,
	}
	if p.DateOfBirth != nil {
		m.DateOfBirth = p.DateOfBirth.Format("2006-01-02")
	}
	return m
}

// ToDuplicateMatches converts a result slice
func ToDuplicateMatches(persons []people.Person) []DuplicateMatch {
	if len(persons) == 0 {
		return nil
	}
	matches := make([]DuplicateMatch, len(persons))
	for i := range persons {
		matches[i] = ToDuplicateMatch(&persons[i])
	}
	return matches
}
