package repository

import (
	"context"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository interface {
	ListAdminAudit(ctx context.Context, limit int) ([]domain.AdminAuditLog, error)
	ListEoAudit(ctx context.Context, verificationID uint) ([]domain.EoAuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) ListAdminAudit(ctx context.Context, limit int) ([]domain.AdminAuditLog, error) {
	var logs []domain.AdminAuditLog
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, translate("list admin audit", err)
	}
	return logs, nil
}

func (r *auditRepository) ListEoAudit(ctx context.Context, verificationID uint) ([]domain.EoAuditLog, error) {
	var logs []domain.EoAuditLog
	if err := r.db.WithContext(ctx).Where("verification_id = ?", verificationID).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, translate("list eo audit", err)
	}
	return logs, nil
}
