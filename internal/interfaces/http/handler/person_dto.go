package handler

import (
	peopleapp "github.com/vrm/backend/internal/application/people"
)

// CreatePersonRequest is the HTTP request body for creating a person.
// Sanitization and field validation happen in the application layer; binding
// tags here only reject obviously malformed payloads early.
// @name HandlerCreatePersonRequest
type CreatePersonRequest struct {
	FirstName      string   `json:"first_name" binding:"required,max=100" example:"Maria"`
	MiddleName     string   `json:"middle_name" binding:"omitempty,max=100"`
	LastName       string   `json:"last_name" binding:"required,max=100" example:"Santos"`
	Suffix         string   `json:"suffix" binding:"omitempty,max=10" example:"Jr."`
	DateOfBirth    string   `json:"date_of_birth" binding:"omitempty,len=10" example:"1984-03-21"`
	Gender         string   `json:"gender" binding:"omitempty,max=10"`
	Email          string   `json:"email" binding:"omitempty,max=200" example:"maria@example.com"`
	PhonePrimary   string   `json:"phone_primary" binding:"omitempty,max=50"`
	PhoneSecondary string   `json:"phone_secondary" binding:"omitempty,max=50"`
	Street         string   `json:"street" binding:"omitempty,max=200"`
	Apartment      string   `json:"apartment" binding:"omitempty,max=50"`
	City           string   `json:"city" binding:"omitempty,max=100"`
	County         string   `json:"county" binding:"omitempty,max=100"`
	State          string   `json:"state" binding:"omitempty,usstate"`
	ZipCode        string   `json:"zip_code" binding:"omitempty,max=10"`
	Occupation     string   `json:"occupation" binding:"omitempty,max=200"`
	Employer       string   `json:"employer" binding:"omitempty,max=200"`
	Tags           []string `json:"tags" binding:"omitempty,dive,max=50"`
	Notes          string   `json:"notes" binding:"omitempty,max=10000"`

	// ConfirmDuplicates acknowledges a previous duplicate warning and lets
	// the create proceed despite suspected matches.
	ConfirmDuplicates bool `json:"confirm_duplicates"`
}

// UpdatePersonRequest is the HTTP request body for updating a person.
// Updates are always advisory about duplicates, so there is no confirmation flag.
// @name HandlerUpdatePersonRequest
type UpdatePersonRequest struct {
	FirstName      string   `json:"first_name" binding:"required,max=100"`
	MiddleName     string   `json:"middle_name" binding:"omitempty,max=100"`
	LastName       string   `json:"last_name" binding:"required,max=100"`
	Suffix         string   `json:"suffix" binding:"omitempty,max=10"`
	DateOfBirth    string   `json:"date_of_birth" binding:"omitempty,len=10"`
	Gender         string   `json:"gender" binding:"omitempty,max=10"`
	Email          string   `json:"email" binding:"omitempty,max=200"`
	PhonePrimary   string   `json:"phone_primary" binding:"omitempty,max=50"`
	PhoneSecondary string   `json:"phone_secondary" binding:"omitempty,max=50"`
	Street         string   `json:"street" binding:"omitempty,max=200"`
	Apartment      string   `json:"apartment" binding:"omitempty,max=50"`
	City           string   `json:"city" binding:"omitempty,max=100"`
	County         string   `json:"county" binding:"omitempty,max=100"`
	State          string   `json:"state" binding:"omitempty,usstate"`
	ZipCode        string   `json:"zip_code" binding:"omitempty,max=10"`
	Occupation     string   `json:"occupation" binding:"omitempty,max=200"`
	Employer       string   `json:"employer" binding:"omitempty,max=200"`
	Tags           []string `json:"tags" binding:"omitempty,dive,max=50"`
	Notes          string   `json:"notes" binding:"omitempty,max=10000"`
}

// CheckDuplicatesRequest is the HTTP request body for a standalone duplicate
// check. Only the identity fields participate in matching.
// @name HandlerCheckDuplicatesRequest
type CheckDuplicatesRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,len=10"`
	Email       string `json:"email" binding:"omitempty,max=200"`
}

// ListPersonsQuery binds list/search query parameters
// @name HandlerListPersonsQuery
type ListPersonsQuery struct {
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string `form:"order_by" binding:"omitempty,oneof=created_at updated_at last_name first_name city state"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search          string `form:"search" binding:"omitempty,max=200"`
	State           string `form:"state" binding:"omitempty,usstate"`
	City            string `form:"city" binding:"omitempty,max=100"`
	Gender          string `form:"gender" binding:"omitempty,max=10"`
	Tag             string `form:"tag" binding:"omitempty,max=50"`
	IncludeInactive bool   `form:"include_inactive"`
}

// DuplicateSuspectsResponse is returned with a 409 when an unconfirmed create
// hits suspected duplicates
// @name HandlerDuplicateSuspectsResponse
type DuplicateSuspectsResponse struct {
	Matches []peopleapp.DuplicateMatch `json:"matches"`
}

func (r CreatePersonRequest) toApp() peopleapp.CreatePersonRequest {
	return peopleapp.CreatePersonRequest{
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName,
		LastName:       r.LastName,
		Suffix:         r.Suffix,
		DateOfBirth:    r.DateOfBirth,
		Gender:         r.Gender,
		Email:          r.Email,
		PhonePrimary:   r.PhonePrimary,
		PhoneSecondary: r.PhoneSecondary,
		Street:         r.Street,
		Apartment:      r.Apartment,
		City:           r.City,
		County:         r.County,
		State:          r.State,
		ZipCode:        r.ZipCode,
		Occupation:     r.Occupation,
		Employer:       r.Employer,
		Tags:           r.Tags,
		Notes:          r.Notes,
	}
}

func (r UpdatePersonRequest) toApp() peopleapp.UpdatePersonRequest {
	return peopleapp.UpdatePersonRequest{
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName,
		LastName:       r.LastName,
		Suffix:         r.Suffix,
		DateOfBirth:    r.DateOfBirth,
		Gender:         r.Gender,
		Email:          r.Email,
		PhonePrimary:   r.PhonePrimary,
		PhoneSecondary: r.PhoneSecondary,
		Street:         r.Street,
		Apartment:      r.Apartment,
		City:           r.City,
		County:         r.County,
		State:          r.State,
		ZipCode:        r.ZipCode,
		Occupation:     r.Occupation,
		Employer:       r.Employer,
		Tags:           r.Tags,
		Notes:          r.Notes,
	}
}

func (r CheckDuplicatesRequest) toApp() peopleapp.CreatePersonRequest {
	return peopleapp.CreatePersonRequest{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Email:       r.Email,
	}
}

func (q ListPersonsQuery) toFilter() peopleapp.ListPersonsFilter {
	return peopleapp.ListPersonsFilter{
		Page:            q.Page,
		PageSize:        q.PageSize,
		OrderBy:         q.OrderBy,
		OrderDir:        q.OrderDir,
		Search:          q.Search,
		State:           q.State,
		City:            q.City,
		Gender:          q.Gender,
		Tag:             q.Tag,
		IncludeInactive: q.IncludeInactive,
	}
}
