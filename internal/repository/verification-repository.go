package repository

import (
	"context"
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

// NikHash is the projection used for the linear NIK comparison.
type NikHash struct {
	UserID  uint
	NikHash string
}

type VerificationRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*domain.EoVerification, error)
	FindByID(ctx context.Context, id uint) (*domain.EoVerification, error)
	ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.EoVerification, error)
	CountByStatus(ctx context.Context, status domain.VerificationStatus) (int64, error)

	ListNikHashes(ctx context.Context, excludeUserID uint) ([]NikHash, error)
	FingerprintTaken(ctx context.Context, fingerprint string, excludeUserID uint) (bool, error)

	Create(ctx context.Context, v *domain.EoVerification) error
	Resubmit(ctx context.Context, v *domain.EoVerification) error

	Approve(ctx context.Context, id, adminID uint) (*domain.EO, error)
	Reject(ctx context.Context, id, adminID uint, reason string, audit domain.EoAuditLog) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) FindByUserID(ctx context.Context, userID uint) (*domain.EoVerification, error) {
	var v domain.EoVerification
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&v).Error; err != nil {
		return nil, translate("find verification by user", err)
	}
	return &v, nil
}

func (r *verificationRepository) FindByID(ctx context.Context, id uint) (*domain.EoVerification, error) {
	var v domain.EoVerification
	if err := r.db.WithContext(ctx).Preload("User").First(&v, id).Error; err != nil {
		return nil, translate("find verification", err)
	}
	return &v, nil
}

func (r *verificationRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.EoVerification, error) {
	var list []domain.EoVerification
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, translate("list verifications", err)
	}
	return list, nil
}

func (r *verificationRepository) CountByStatus(ctx context.Context, status domain.VerificationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.EoVerification{}).Where("status = ?", status).Count(&n).Error
	if err != nil {
		return 0, translate("count verifications", err)
	}
	return n, nil
}

func (r *verificationRepository) ListNikHashes(ctx context.Context, excludeUserID uint) ([]NikHash, error) {
	var rows []NikHash
	err := r.db.WithContext(ctx).
		Model(&domain.EoVerification{}).
		Select("user_id", "nik_hash").
		Where("user_id <> ?", excludeUserID).
		Scan(&rows).Error
	if err != nil {
		return nil, translate("list nik hashes", err)
	}
	return rows, nil
}

func (r *verificationRepository) FingerprintTaken(ctx context.Context, fingerprint string, excludeUserID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.EoVerification{}).
		Where("nik_fingerprint = ? AND user_id <> ?", fingerprint, excludeUserID).
		Count(&n).Error
	if err != nil {
		return false, translate("check nik fingerprint", err)
	}
	return n > 0, nil
}

func (r *verificationRepository) Create(ctx context.Context, v *domain.EoVerification) error {
	v.Status = domain.VerificationPending
	v.Note = nil
	return translate("create verification", r.db.WithContext(ctx).Create(v).Error)
}

// Resubmit overwrites a REJECTED application and puts it back in the queue.
func (r *verificationRepository) Resubmit(ctx context.Context, v *domain.EoVerification) error {
	res := r.db.WithContext(ctx).
		Model(&domain.EoVerification{}).
		Where("id = ? AND status = ?", v.ID, domain.VerificationRejected).
		Updates(map[string]any{
			"full_name":       v.FullName,
			"nik_masked":      v.NikMasked,
			"nik_hash":        v.NikHash,
			"nik_fingerprint": v.NikFingerprint,
			"phone":           v.Phone,
			"address":         v.Address,
			"ktp_image":       v.KtpImage,
			"selfie_image":    v.SelfieImage,
			"status":          domain.VerificationPending,
			"note":            nil,
			"reviewed_by":     nil,
			"reviewed_at":     nil,
		})
	if res.Error != nil {
		return translate("resubmit verification", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	v.Status = domain.VerificationPending
	v.Note = nil
	v.ReviewedBy = nil
	v.ReviewedAt = nil
	return nil
}

// Approve provisions the organizer in one transaction: verification
// APPROVED, EO row, owner role EO, owner as team ADMIN, admin audit row.
func (r *verificationRepository) Approve(ctx context.Context, id, adminID uint) (*domain.EO, error) {
	now := time.Now()
	var eo *domain.EO

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.EoVerification{}).
			Where("id = ? AND status = ?", id, domain.VerificationPending).
			Updates(map[string]any{
				"status":      domain.VerificationApproved,
				"reviewed_by": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		var v domain.EoVerification
		if err := tx.First(&v, id).Error; err != nil {
			return err
		}

		eo = &domain.EO{OwnerID: v.UserID, Name: v.FullName}
		if err := tx.Create(eo).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.User{}).Where("id = ?", v.UserID).Update("role", domain.RoleEO).Error; err != nil {
			return err
		}

		member := &domain.EOTeamMember{EOID: eo.ID, UserID: v.UserID, Role: domain.TeamRoleAdmin}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		return tx.Create(&domain.AdminAuditLog{
			AdminID:  adminID,
			Action:   domain.AuditApproveEO,
			TargetID: id,
		}).Error
	})
	if err != nil {
		return nil, translate("approve verification", err)
	}
	return eo, nil
}

func (r *verificationRepository) Reject(ctx context.Context, id, adminID uint, reason string, audit domain.EoAuditLog) error {
	now := time.Now()

	return translate("reject verification", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.EoVerification{}).
			Where("id = ? AND status = ?", id, domain.VerificationPending).
			Updates(map[string]any{
				"status":      domain.VerificationRejected,
				"note":        reason,
				"reviewed_by": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Create(&domain.AdminAuditLog{
			AdminID:  adminID,
			Action:   domain.AuditRejectEO,
			TargetID: id,
			Detail:   &reason,
		}).Error; err != nil {
			return err
		}

		audit.VerificationID = id
		audit.Action = domain.AuditRejectEO
		return tx.Create(&audit).Error
	}))
}
