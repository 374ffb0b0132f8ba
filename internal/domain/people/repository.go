package people

import (
	"context"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/shared"
)

// PersonRepository is the persistence port for the people context.
//
// Implementations must translate a storage-level uniqueness violation on the
// active (first_name, last_name, date_of_birth) triple into
// ErrIdentityConflict so callers never see raw database errors.
type PersonRepository interface {
	// FindByID finds a person by ID, active or not
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)

	// FindAll lists people matching the filter. Unless the filter says
	// otherwise only active records are returned.
	FindAll(ctx context.Context, filter shared.Filter) ([]Person, error)

	// Count counts people matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindDuplicates runs the multi-criteria duplicate query. Results contain
	// only active records, exclude excludeID when given, and are ordered
	// deterministically (creation time, then ID). The criteria must carry
	// both name components; see DuplicateCriteria.Validate.
	FindDuplicates(ctx context.Context, criteria DuplicateCriteria, excludeID *uuid.UUID) ([]Person, error)

	// Create inserts a new person
	Create(ctx context.Context, person *Person) error

	// Save persists changes to an existing person
	Save(ctx context.Context, person *Person) error
}
