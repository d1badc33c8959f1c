package dto

import (
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
)

type UserResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type UserPage struct {
	Items  []UserResponse `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UserDetail is the admin view of one account and its EO application, if any.
type UserDetail struct {
	UserResponse
	UpdatedAt      time.Time              `json:"updated_at"`
	EoVerification *domain.EoVerification `json:"eo_verification"`
}

type NotificationCounts struct {
	PendingEO    int64 `json:"pending_eo"`
	Users        int64 `json:"users"`
	ActiveEvents int64 `json:"active_events"`
}

type NotificationDetails struct {
	PendingEO []domain.EoVerification `json:"pending_eo"`
}
