package models

import (
	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for audit trail entries.
// Rows are append-only; there is no update path.
type AuditLogModel struct {
	BaseModel
	ActorID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Action    audit.Action `gorm:"type:varchar(20);not null"`
	PersonID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	RequestID string       `gorm:"type:varchar(64)"`
	Detail    string       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		BaseEntity: m.BaseModel.ToDomain(),
		ActorID:    m.ActorID,
		Action:     m.Action,
		PersonID:   m.PersonID,
		RequestID:  m.RequestID,
		Detail:     m.Detail,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	m := &AuditLogModel{}
	m.FromDomainBaseEntity(e.BaseEntity)
	m.ActorID = e.ActorID
	m.Action = e.Action
	m.PersonID = e.PersonID
	m.RequestID = e.RequestID
	m.Detail = e.Detail
	return m
}
