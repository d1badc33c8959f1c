package services

import (
	"context"
	"errors"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"go.uber.org/zap"
)

// AdminService is user moderation. Every change writes an admin audit row.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) (*dto.UserPage, error)
	UserDetail(ctx context.Context, userID uint) (*dto.UserDetail, error)
	SetActive(ctx context.Context, admin helper.Identity, userID uint, active bool) error
	DeleteUser(ctx context.Context, admin helper.Identity, userID uint) error
	AuditLogs(ctx context.Context, limit int) ([]domain.AdminAuditLog, error)
	VerificationAudit(ctx context.Context, verificationID uint) ([]domain.EoAuditLog, error)

	Notifications(ctx context.Context) (*dto.NotificationCounts, error)
	NotificationDetails(ctx context.Context, limit int) (*dto.NotificationDetails, error)
}

type adminService struct {
	users        repository.UserRepository
	verification repository.VerificationRepository
	events       repository.EventRepository
	audit        repository.AuditRepository
	log          *zap.Logger
}

func NewAdminService(
	users repository.UserRepository,
	verification repository.VerificationRepository,
	events repository.EventRepository,
	audit repository.AuditRepository,
	log *zap.Logger,
) AdminService {
	return &adminService{users: users, verification: verification, events: events, audit: audit, log: log}
}

func (s *adminService) ListUsers(ctx context.Context, limit, offset int) (*dto.UserPage, error) {
	limit, offset = clampPage(limit, offset)
	users, total, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.ToUserResponse(&users[i]))
	}
	return &dto.UserPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *adminService) UserDetail(ctx context.Context, userID uint) (*dto.UserDetail, error) {
	user, err := s.users.FindUserById(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	detail := &dto.UserDetail{UserResponse: dto.ToUserResponse(user), UpdatedAt: user.UpdatedAt}

	v, err := s.verification.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		detail.EoVerification = v
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return detail, nil
}

func (s *adminService) SetActive(ctx context.Context, admin helper.Identity, userID uint, active bool) error {
	if admin.ID == userID {
		return ErrForbidden
	}
	if err := s.users.SetActive(ctx, admin.ID, userID, active); err != nil {
		return notFound(err)
	}
	s.log.Info("user status changed",
		zap.Uint("admin_id", admin.ID),
		zap.Uint("user_id", userID),
		zap.Bool("active", active),
	)
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, admin helper.Identity, userID uint) error {
	if admin.ID == userID {
		return ErrForbidden
	}
	if err := s.users.SoftDelete(ctx, admin.ID, userID); err != nil {
		return notFound(err)
	}
	s.log.Info("user deleted", zap.Uint("admin_id", admin.ID), zap.Uint("user_id", userID))
	return nil
}

func (s *adminService) AuditLogs(ctx context.Context, limit int) ([]domain.AdminAuditLog, error) {
	limit, _ = clampPage(limit, 0)
	return s.audit.ListAdminAudit(ctx, limit)
}

func (s *adminService) VerificationAudit(ctx context.Context, verificationID uint) ([]domain.EoAuditLog, error) {
	return s.audit.ListEoAudit(ctx, verificationID)
}

// Notifications is the admin badge: queue length plus headline counts.
func (s *adminService) Notifications(ctx context.Context) (*dto.NotificationCounts, error) {
	pending, err := s.verification.CountByStatus(ctx, domain.VerificationPending)
	if err != nil {
		return nil, err
	}
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.events.CountByStatus(ctx, domain.EventPublished)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationCounts{PendingEO: pending, Users: users, ActiveEvents: active}, nil
}

func (s *adminService) NotificationDetails(ctx context.Context, limit int) (*dto.NotificationDetails, error) {
	limit, _ = clampPage(limit, 0)
	list, err := s.verification.ListByStatus(ctx, domain.VerificationPending, limit, 0)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.EoVerification{}
	}
	return &dto.NotificationDetails{PendingEO: list}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
