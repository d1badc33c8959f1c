package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error)
	AdminLogin(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uint) (*domain.User, error)
	// SeedAdmin creates the platform admin once; an existing account is left alone.
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type authService struct {
	users        repository.UserRepository
	verification repository.VerificationRepository
	auth         helper.Auth
	bcryptCost   int
	log          *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	verification repository.VerificationRepository,
	auth helper.Auth,
	bcryptCost int,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:        users,
		verification: verification,
		auth:         auth,
		bcryptCost:   bcryptCost,
		log:          log,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(&input); err != nil {
		return nil, err
	}

	hash, err := helper.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error) {
	user, err := s.checkCredentials(ctx, input)
	if err != nil {
		return nil, err
	}

	// an EO account is usable only once its application is approved
	if user.Role == domain.RoleEO {
		v, err := s.verification.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if v == nil || v.Status != domain.VerificationApproved {
			return nil, ErrEONotApproved
		}
	}

	return s.issue(helper.ScopeUser, user)
}

func (s *authService) AdminLogin(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error) {
	user, err := s.checkCredentials(ctx, input)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		// same answer as a wrong password
		return nil, ErrInvalidCredentials
	}
	return s.issue(helper.ScopeAdmin, user)
}

func (s *authService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindUserById(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (s *authService) SeedAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := helper.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	err = s.users.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	if err == nil {
		s.log.Info("admin account seeded", zap.String("email", email))
	}
	return err
}

func (s *authService) checkCredentials(ctx context.Context, input dto.UserLogin) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(&input); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := helper.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (s *authService) issue(scope helper.Scope, user *domain.User) (*dto.LoginResponse, error) {
	token, err := s.auth.GenerateToken(scope, helper.Identity{ID: user.ID, Role: user.Role, Email: user.Email})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: dto.ToUserResponse(user)}, nil
}
