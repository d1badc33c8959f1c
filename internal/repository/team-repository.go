package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

// TeamRepository owns EO rows and their team membership.
type TeamRepository interface {
	FindEOByOwner(ctx context.Context, ownerID uint) (*domain.EO, error)
	FindEOByID(ctx context.Context, eoID uint) (*domain.EO, error)
	ListEOs(ctx context.Context, limit, offset int) ([]domain.EO, error)

	FindMember(ctx context.Context, eoID, userID uint) (*domain.EOTeamMember, error)
	FindMemberByID(ctx context.Context, eoID, memberID uint) (*domain.EOTeamMember, error)
	ListMembershipsByUser(ctx context.Context, userID uint) ([]domain.EOTeamMember, error)
	ListMembers(ctx context.Context, eoID uint) ([]domain.EOTeamMember, error)

	// AddMember inserts the member and its scanner allow-list in one transaction.
	AddMember(ctx context.Context, m *domain.EOTeamMember, eventIDs []uint) error
	ReplaceMemberEvents(ctx context.Context, memberID uint, eventIDs []uint) error
	RemoveMember(ctx context.Context, memberID uint) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) FindEOByOwner(ctx context.Context, ownerID uint) (*domain.EO, error) {
	var eo domain.EO
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&eo).Error; err != nil {
		return nil, translate("find eo by owner", err)
	}
	return &eo, nil
}

func (r *teamRepository) FindEOByID(ctx context.Context, eoID uint) (*domain.EO, error) {
	var eo domain.EO
	if err := r.db.WithContext(ctx).First(&eo, eoID).Error; err != nil {
		return nil, translate("find eo", err)
	}
	return &eo, nil
}

func (r *teamRepository) ListEOs(ctx context.Context, limit, offset int) ([]domain.EO, error) {
	var eos []domain.EO
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&eos).Error
	if err != nil {
		return nil, translate("list eos", err)
	}
	return eos, nil
}

func (r *teamRepository) FindMember(ctx context.Context, eoID, userID uint) (*domain.EOTeamMember, error) {
	var m domain.EOTeamMember
	err := r.db.WithContext(ctx).
		Preload("Events").
		Where("eo_id = ? AND user_id = ?", eoID, userID).
		First(&m).Error
	if err != nil {
		return nil, translate("find team member", err)
	}
	return &m, nil
}

func (r *teamRepository) FindMemberByID(ctx context.Context, eoID, memberID uint) (*domain.EOTeamMember, error) {
	var m domain.EOTeamMember
	err := r.db.WithContext(ctx).
		Preload("Events").
		Where("id = ? AND eo_id = ?", memberID, eoID).
		First(&m).Error
	if err != nil {
		return nil, translate("find team member", err)
	}
	return &m, nil
}

func (r *teamRepository) ListMembershipsByUser(ctx context.Context, userID uint) ([]domain.EOTeamMember, error) {
	var list []domain.EOTeamMember
	err := r.db.WithContext(ctx).
		Preload("Events").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, translate("list memberships", err)
	}
	return list, nil
}

func (r *teamRepository) ListMembers(ctx context.Context, eoID uint) ([]domain.EOTeamMember, error) {
	var list []domain.EOTeamMember
	err := r.db.WithContext(ctx).
		Preload("Events").
		Preload("User").
		Where("eo_id = ?", eoID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, translate("list team members", err)
	}
	return list, nil
}

func (r *teamRepository) AddMember(ctx context.Context, m *domain.EOTeamMember, eventIDs []uint) error {
	if m == nil || m.EOID == 0 || m.UserID == 0 {
		return errors.New("invalid team member")
	}
	return translate("add team member", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Events", "User").Create(m).Error; err != nil {
			return err
		}
		return insertMemberEvents(tx, m.ID, eventIDs)
	}))
}

func (r *teamRepository) ReplaceMemberEvents(ctx context.Context, memberID uint, eventIDs []uint) error {
	return translate("replace member events", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", memberID).Delete(&domain.EventAccess{}).Error; err != nil {
			return err
		}
		return insertMemberEvents(tx, memberID, eventIDs)
	}))
}

func insertMemberEvents(tx *gorm.DB, memberID uint, eventIDs []uint) error {
	if len(eventIDs) == 0 {
		return nil
	}
	links := make([]domain.EventAccess, 0, len(eventIDs))
	for _, id := range eventIDs {
		links = append(links, domain.EventAccess{MemberID: memberID, EventID: id})
	}
	return tx.Create(&links).Error
}

func (r *teamRepository) RemoveMember(ctx context.Context, memberID uint) error {
	return translate("remove team member", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", memberID).Delete(&domain.EventAccess{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.EOTeamMember{}, memberID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
