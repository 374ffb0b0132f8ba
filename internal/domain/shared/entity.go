// Package shared holds the building blocks common to all domain entities.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and lifecycle timestamps every entity
// embeds. IDs are generated at construction, never by the database.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a fresh entity base with both timestamps set to now
func NewBaseEntity() BaseEntity {
	e := BaseEntity{ID: uuid.New()}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	return e
}

// Touch bumps the update timestamp after a mutation
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
