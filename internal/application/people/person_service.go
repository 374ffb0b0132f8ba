package people

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/audit"
	"github.com/vrm/backend/internal/domain/people"
	"github.com/vrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UnitOfWork runs a function against transaction-scoped repositories.
// Everything done inside fn commits or rolls back atomically: the person row
// and its audit entry either both exist afterwards or neither does.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(persons people.PersonRepository, auditLog audit.Repository) error) error
}

// PersonService orchestrates the person pipeline:
// validate -> sanitize -> duplicate check -> persist.
// It holds no per-request state; confirmation state for the two-phase
// duplicate flow is carried by the caller.
type PersonService struct {
	persons        people.PersonRepository
	auditLog       audit.Repository
	uow            UnitOfWork
	log            *zap.Logger
	emailBlocklist []string
}

// NewPersonService creates a new PersonService
func NewPersonService(persons people.PersonRepository, auditLog audit.Repository, uow UnitOfWork, log *zap.Logger) *PersonService {
	return &PersonService{
		persons:  persons,
		auditLog: auditLog,
		uow:      uow,
		log:      log,
	}
}

// SetEmailBlocklist overrides the default rejected email domains
func (s *PersonService) SetEmailBlocklist(domains []string) {
	s.emailBlocklist = domains
}

// ValidatePersonData runs business validation over the raw request fields.
// All violations are collected, not just the first, so one response gives
// the user the complete picture. It runs before any sanitization.
func (s *PersonService) ValidatePersonData(req CreatePersonRequest) people.FieldErrors {
	errs := people.FieldErrors{}

	if people.Sanitize(req.FirstName) == "" {
		errs.Add("first_name", "first name is required")
	}
	if people.Sanitize(req.LastName) == "" {
		errs.Add("last_name", "last name is required")
	}

	errs.AddError(people.ValidatePhone("phone_primary", req.PhonePrimary))
	errs.AddError(people.ValidatePhone("phone_secondary", req.PhoneSecondary))
	errs.AddError(people.ValidateZipCode(req.ZipCode))
	errs.AddError(people.ValidateState(req.State))
	errs.AddError(people.ValidateEmail(req.Email, s.emailBlocklist))
	errs.AddError(people.ValidateGender(req.Gender))

	if req.DateOfBirth != "" {
		dob, perr := people.ParseDateOfBirth(req.DateOfBirth)
		if perr != nil {
			errs.AddError(perr)
		} else {
			errs.AddError(people.ValidateDateOfBirth(dob))
		}
	}

	return errs
}

// Create runs the full creation pipeline inside one transaction and returns
// the created person together with any advisory duplicates. Duplicates never
// block creation: callers wanting confirmation run CheckDuplicates first and
// pass checkDuplicates=false once the user has confirmed.
func (s *PersonService) Create(ctx context.Context, req CreatePersonRequest, actx audit.Context, checkDuplicates bool) (*CreatePersonResult, error) {
	return s.create(ctx, req, actx, checkDuplicates, audit.ActionCreate)
}

// CreateImported runs the same pipeline for a record arriving through a bulk
// import. The audit trail records an import action instead of a plain create.
func (s *PersonService) CreateImported(ctx context.Context, req CreatePersonRequest, actx audit.Context) (*CreatePersonResult, error) {
	return s.create(ctx, req, actx, true, audit.ActionImport)
}

func (s *PersonService) create(ctx context.Context, req CreatePersonRequest, actx audit.Context, checkDuplicates bool, action audit.Action) (*CreatePersonResult, error) {
	if errs := s.ValidatePersonData(req); errs.HasErrors() {
		return nil, errs
	}
	attrs := sanitizeAttributes(req)

	var result CreatePersonResult
	err := s.uow.Do(ctx, func(persons people.PersonRepository, auditLog audit.Repository) error {
		if checkDuplicates {
			matches, err := persons.FindDuplicates(ctx, people.CriteriaFromAttributes(attrs), nil)
			if err != nil {
				return err
			}
			result.Duplicates = ToDuplicateMatches(matches)
		}

		person, err := people.NewPerson(attrs, actx.ActorID)
		if err != nil {
			return err
		}
		if err := persons.Create(ctx, person); err != nil {
			if !errors.Is(err, people.ErrIdentityConflict) {
				s.log.Error("person insert failed",
					zap.String("request_id", actx.RequestID),
					zap.Error(err))
			}
			return err
		}
		if err := auditLog.Append(ctx, audit.NewEntry(actx, action, person.ID, person.FullName())); err != nil {
			return err
		}

		result.Person = ToPersonResponse(person)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckDuplicates validates and sanitizes the request, then runs duplicate
// detection without persisting anything. Used by the first phase of the
// confirm-before-create flow.
func (s *PersonService) CheckDuplicates(ctx context.Context, req CreatePersonRequest) ([]DuplicateMatch, error) {
	if errs := s.ValidatePersonData(req); errs.HasErrors() {
		return nil, errs
	}
	attrs := sanitizeAttributes(req)
	matches, err := s.persons.FindDuplicates(ctx, people.CriteriaFromAttributes(attrs), nil)
	if err != nil {
		return nil, err
	}
	return ToDuplicateMatches(matches), nil
}

// GetByID retrieves a person by ID
func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	person, err := s.persons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPersonResponse(person)
	return &resp, nil
}

// List retrieves a paginated, searchable list of people
func (s *PersonService) List(ctx context.Context, filter ListPersonsFilter) ([]PersonResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "last_name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}
	if filter.State != "" {
		domainFilter.WithFilter("state", filter.State)
	}
	if filter.City != "" {
		domainFilter.WithFilter("city", filter.City)
	}
	if filter.Gender != "" {
		domainFilter.WithFilter("gender", filter.Gender)
	}
	if filter.Tag != "" {
		domainFilter.WithFilter("tag", filter.Tag)
	}
	if filter.IncludeInactive {
		domainFilter.WithFilter("include_inactive", true)
	}

	persons, err := s.persons.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.persons.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PersonResponse, len(persons))
	for i := range persons {
		responses[i] = ToPersonResponse(&persons[i])
	}
	return responses, total, nil
}

// Update re-runs the validation and sanitization pipeline over an existing
// record. Duplicate detection excludes the record itself.
func (s *PersonService) Update(ctx context.Context, id uuid.UUID, req UpdatePersonRequest, actx audit.Context, checkDuplicates bool) (*CreatePersonResult, error) {
	if errs := s.ValidatePersonData(req); errs.HasErrors() {
		return nil, errs
	}
	attrs := sanitizeAttributes(req)

	var result CreatePersonResult
	err := s.uow.Do(ctx, func(persons people.PersonRepository, auditLog audit.Repository) error {
		person, err := persons.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if checkDuplicates {
			matches, err := persons.FindDuplicates(ctx, people.CriteriaFromAttributes(attrs), &id)
			if err != nil {
				return err
			}
			result.Duplicates = ToDuplicateMatches(matches)
		}

		if err := person.Update(attrs); err != nil {
			return err
		}
		if err := persons.Save(ctx, person); err != nil {
			if !errors.Is(err, people.ErrIdentityConflict) {
				s.log.Error("person update failed",
					zap.String("request_id", actx.RequestID),
					zap.String("person_id", id.String()),
					zap.Error(err))
			}
			return err
		}
		if err := auditLog.Append(ctx, audit.NewEntry(actx, audit.ActionUpdate, person.ID, person.FullName())); err != nil {
			return err
		}

		result.Person = ToPersonResponse(person)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Deactivate soft-deletes a person record
func (s *PersonService) Deactivate(ctx context.Context, id uuid.UUID, actx audit.Context) error {
	return s.uow.Do(ctx, func(persons people.PersonRepository, auditLog audit.Repository) error {
		person, err := persons.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := person.Deactivate(); err != nil {
			return err
		}
		if err := persons.Save(ctx, person); err != nil {
			return err
		}
		return auditLog.Append(ctx, audit.NewEntry(actx, audit.ActionDeactivate, person.ID, person.FullName()))
	})
}

// Reactivate restores a soft-deleted person record
func (s *PersonService) Reactivate(ctx context.Context, id uuid.UUID, actx audit.Context) error {
	return s.uow.Do(ctx, func(persons people.PersonRepository, auditLog audit.Repository) error {
		person, err := persons.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := person.Reactivate(); err != nil {
			return err
		}
		if err := persons.Save(ctx, person); err != nil {
			return err
		}
		return auditLog.Append(ctx, audit.NewEntry(actx, audit.ActionReactivate, person.ID, person.FullName()))
	})
}

// History lists the audit trail for a person, newest first
func (s *PersonService) History(ctx context.Context, personID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	return s.auditLog.FindByPerson(ctx, personID, filter)
}

// sanitizeAttributes converts the validated raw request into sanitized,
// normalized domain attributes. It runs only after validation has passed.
func sanitizeAttributes(req CreatePersonRequest) people.PersonAttributes {
	attrs := people.PersonAttributes{
		FirstName:      people.Truncate(people.Sanitize(req.FirstName), people.MaxNameLength),
		MiddleName:     people.Truncate(people.Sanitize(req.MiddleName), people.MaxNameLength),
		LastName:       people.Truncate(people.Sanitize(req.LastName), people.MaxNameLength),
		Suffix:         people.Truncate(people.Sanitize(req.Suffix), people.MaxSuffixLength),
		Email:          strings.ToLower(people.Sanitize(req.Email)),
		PhonePrimary:   people.NormalizePhone(people.Sanitize(req.PhonePrimary)),
		PhoneSecondary: people.NormalizePhone(people.Sanitize(req.PhoneSecondary)),
		Street:         people.Truncate(people.Sanitize(req.Street), people.MaxStreetLength),
		Apartment:      people.Truncate(people.Sanitize(req.Apartment), people.MaxApartmentLength),
		City:           people.Truncate(people.Sanitize(req.City), people.MaxCityLength),
		County:         people.Truncate(people.Sanitize(req.County), people.MaxCountyLength),
		State:          strings.ToUpper(people.Sanitize(req.State)),
		ZipCode:        people.Sanitize(req.ZipCode),
		Occupation:     people.Truncate(people.Sanitize(req.Occupation), people.MaxOccupationLength),
		Employer:       people.Truncate(people.Sanitize(req.Employer), people.MaxEmployerLength),
		Notes:          people.Truncate(people.Sanitize(req.Notes), people.MaxNotesLength),
	}

	if gender, err := people.ParseGender(req.Gender); err == nil {
		attrs.Gender = gender
	} else {
		attrs.Gender = people.GenderUnknown
	}

	if req.DateOfBirth != "" {
		if dob, perr := people.ParseDateOfBirth(req.DateOfBirth); perr == nil {
			attrs.DateOfBirth = &dob
		}
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tags = append(tags, people.Truncate(people.Sanitize(tag), people.MaxTagLength))
	}
	attrs.Tags = people.NormalizeTags(tags)

	return attrs
}
