package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/people"
	"github.com/vrm/backend/internal/domain/shared"
	"github.com/vrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPersonRepository implements PersonRepository using GORM
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// FindByID finds a person by its ID
func (r *GormPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*people.Person, error) {
	var model models.PersonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all people matching the filter. Inactive records are
// excluded unless the filter asks for them.
func (r *GormPersonRepository) FindAll(ctx context.Context, filter shared.Filter) ([]people.Person, error) {
	var personModels []models.PersonModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PersonModel{}), filter)

	if err := query.Find(&personModels).Error; err != nil {
		return nil, err
	}

	persons := make([]people.Person, len(personModels))
	for i, model := range personModels {
		persons[i] = *model.ToDomain()
	}
	return persons, nil
}

// Count counts people matching the filter
func (r *GormPersonRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PersonModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDuplicates finds active people matching any of the criteria's match
// rules. Results are ordered oldest first so the original record surfaces
// before later copies. excludeID removes the record being edited from its
// own match set.
func (r *GormPersonRepository) FindDuplicates(ctx context.Context, criteria people.DuplicateCriteria, excludeID *uuid.UUID) ([]people.Person, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	rules := criteria.Rules()
	if len(rules) == 0 {
		return []people.Person{}, nil
	}

	conds := make([]string, 0, len(rules))
	args := make([]any, 0, len(rules)*4)
	for _, rule := range rules {
		cond, ruleArgs := r.ruleCondition(rule, criteria)
		conds = append(conds, cond)
		args = append(args, ruleArgs...)
	}

	query := r.db.WithContext(ctx).
		Model(&models.PersonModel{}).
		Where("is_active = ?", true).
		Where("("+strings.Join(conds, " OR ")+")", args...)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var personModels []models.PersonModel
	if err := query.Order("created_at ASC, id ASC").Find(&personModels).Error; err != nil {
		return nil, err
	}

	persons := make([]people.Person, len(personModels))
	for i, model := range personModels {
		persons[i] = *model.ToDomain()
	}
	return persons, nil
}

// ruleCondition builds the SQL fragment for one match rule. Name comparisons
// are case-insensitive; phone numbers are compared after normalization, so
// either stored column can match either submitted number.
func (r *GormPersonRepository) ruleCondition(rule people.MatchRule, c people.DuplicateCriteria) (string, []any) {
	first := strings.ToLower(c.FirstName)
	last := strings.ToLower(c.LastName)

	switch rule {
	case people.MatchNameAndBirthDate:
		return "(LOWER(first_name) = ? AND LOWER(last_name) = ? AND date_of_birth = ?)",
			[]any{first, last, *c.DateOfBirth}
	case people.MatchEmail:
		return "LOWER(email) = ?", []any{strings.ToLower(c.Email)}
	case people.MatchPhonePrimary:
		return "(phone_primary = ? OR phone_secondary = ?)", []any{c.PhonePrimary, c.PhonePrimary}
	case people.MatchPhoneSecondary:
		return "(phone_primary = ? OR phone_secondary = ?)", []any{c.PhoneSecondary, c.PhoneSecondary}
	case people.MatchNameAndAddress:
		return "(LOWER(first_name) = ? AND LOWER(last_name) = ? AND LOWER(street) = ? AND zip_code = ?)",
			[]any{first, last, strings.ToLower(c.Street), c.ZipCode}
	default:
		// Unreachable as long as Rules() and this switch stay in sync
		return "1 = 0", nil
	}
}

// Create inserts a new person
func (r *GormPersonRepository) Create(ctx context.Context, person *people.Person) error {
	model := models.PersonModelFromDomain(person)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return people.ErrIdentityConflict
		}
		return err
	}
	return nil
}

// Save updates an existing person
func (r *GormPersonRepository) Save(ctx context.Context, person *people.Person) error {
	model := models.PersonModelFromDomain(person)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return people.ErrIdentityConflict
		}
		return err
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormPersonRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, PersonSortFields, "last_name")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPersonRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Soft-deleted records stay hidden unless explicitly requested
	if filter.Filters["include_inactive"] != true {
		query = query.Where("is_active = ?", true)
	}

	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone_primary ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "state":
			query = query.Where("state = ?", value)
		case "city":
			query = query.Where("city = ?", value)
		case "gender":
			query = query.Where("gender = ?", value)
		case "tag":
			query = query.Where("? = ANY(tags)", value)
		case "zip_code":
			query = query.Where("zip_code = ?", value)
		}
	}

	return query
}

// Ensure GormPersonRepository implements PersonRepository
var _ people.PersonRepository = (*GormPersonRepository)(nil)
