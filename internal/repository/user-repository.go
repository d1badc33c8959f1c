package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserById(ctx context.Context, userID uint) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)

	// admin actions, each written together with its audit row
	SetActive(ctx context.Context, adminID, userID uint, active bool) error
	SoftDelete(ctx context.Context, adminID, userID uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	return translate("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).First(user, "email = ?", email).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	return user, nil
}

func (r *userRepository) FindUserById(ctx context.Context, userID uint) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.WithContext(ctx).First(user, userID).Error; err != nil {
		return nil, translate("find user by id", err)
	}
	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	var (
		users []domain.User
		total int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err)
	}
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, translate("list users", err)
	}
	return users, total, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, translate("count users", err)
	}
	return n, nil
}

func (r *userRepository) SetActive(ctx context.Context, adminID, userID uint, active bool) error {
	action := domain.AuditDeactivateUser
	if active {
		action = domain.AuditActivateUser
	}

	return translate("set user status", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).Where("id = ?", userID).Update("is_active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&domain.AdminAuditLog{AdminID: adminID, Action: action, TargetID: userID}).Error
	}))
}

func (r *userRepository) SoftDelete(ctx context.Context, adminID, userID uint) error {
	return translate("delete user", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&domain.AdminAuditLog{AdminID: adminID, Action: domain.AuditDeleteUser, TargetID: userID}).Error
	}))
}
