package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/vrm/backend/internal/domain/audit"
	"github.com/vrm/backend/internal/domain/shared"
	"github.com/vrm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements audit.Repository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append stores an audit entry. Entries are never updated or deleted.
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByPerson lists audit entries for one person, newest first
func (r *GormAuditLogRepository) FindByPerson(ctx context.Context, personID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditLogModel{}).
		Where("person_id = ?", personID).
		Order("created_at DESC, id DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var logModels []models.AuditLogModel
	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Ensure GormAuditLogRepository implements audit.Repository
var _ audit.Repository = (*GormAuditLogRepository)(nil)
