package persistence

import (
	"context"

	"github.com/vrm/backend/internal/domain/audit"
	"github.com/vrm/backend/internal/domain/people"
	"gorm.io/gorm"
)

// GormUnitOfWork runs application operations inside a single database
// transaction. The repositories handed to fn share the transaction, so a
// failed audit write rolls back the person write with it.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do executes fn within a transaction, passing transaction-scoped repositories
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(persons people.PersonRepository, auditLog audit.Repository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormPersonRepository(tx), NewGormAuditLogRepository(tx))
	})
}
