package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/shared"
)

// Action identifies the recorded operation
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDeactivate Action = "deactivate"
	ActionReactivate Action = "reactivate"
	ActionImport     Action = "import"
)

// Context identifies who is acting and under which request. It is passed
// explicitly through the call chain for the lifetime of one operation;
// nothing here is stored in globals or keyed to the calling goroutine.
type Context struct {
	ActorID   uuid.UUID
	RequestID string
}

// Entry is one immutable audit trail record
type Entry struct {
	shared.BaseEntity
	ActorID   uuid.UUID
	Action    Action
	PersonID  uuid.UUID
	RequestID string
	Detail    string
}

// NewEntry creates an audit entry for an action on a person record
func NewEntry(actx Context, action Action, personID uuid.UUID, detail string) *Entry {
	return &Entry{
		BaseEntity: shared.NewBaseEntity(),
		ActorID:    actx.ActorID,
		Action:     action,
		PersonID:   personID,
		RequestID:  actx.RequestID,
		Detail:     detail,
	}
}

// Repository is the persistence port for the audit trail
type Repository interface {
	// Append stores an entry. Entries are append-only.
	Append(ctx context.Context, entry *Entry) error

	// FindByPerson lists entries for one person, newest first
	FindByPerson(ctx context.Context, personID uuid.UUID, filter shared.Filter) ([]Entry, error)
}
