package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot extends BaseEntity with a version counter used for
// optimistic locking.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// NewBaseAggregateRoot creates a new aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AuditedAggregateRoot extends BaseAggregateRoot with creator provenance.
// Every record tracks the staff user that created it.
type AuditedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy uuid.UUID
}

// NewAuditedAggregateRoot creates a new aggregate root with creator info
func NewAuditedAggregateRoot(createdBy uuid.UUID) AuditedAggregateRoot {
	return AuditedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CreatedBy:         createdBy,
	}
}
