package dto

import (
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
)

type EventInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description *string    `json:"description"`
	Type        string     `json:"type" validate:"omitempty,oneof=ONLINE OFFLINE"`
	StartDate   time.Time  `json:"startDate" validate:"required"`
	EndDate     time.Time  `json:"endDate" validate:"required,gtfield=StartDate"`
	Timezone    string     `json:"timezone" validate:"omitempty,max=64"`
	TicketLimit *int       `json:"ticketLimit" validate:"omitempty,min=1"`
	SaleStart   *time.Time `json:"saleStart"`
	SaleEnd     *time.Time `json:"saleEnd"`
	Banner      *string    `json:"banner"`
}

type EventUpdate struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description"`
	Type        *string    `json:"type" validate:"omitempty,oneof=ONLINE OFFLINE"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Timezone    *string    `json:"timezone" validate:"omitempty,max=64"`
	TicketLimit *int       `json:"ticketLimit" validate:"omitempty,min=1"`
	Banner      *string    `json:"banner"`
}

type EventStatusRequest struct {
	Status domain.EventStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED FINISHED CANCELLED"`
}

type TicketTypeInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
	Price       int64   `json:"price" validate:"min=0"`
	Quota       int     `json:"quota" validate:"required,min=1"`
}

type TicketTypeUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,min=0"`
	Quota       *int    `json:"quota" validate:"omitempty,min=1"`
}

type AddMemberRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Role     domain.TeamRole `json:"role" validate:"required,oneof=ADMIN SCANNER"`
	EventIDs []uint          `json:"eventIds"`
}

type MemberEventsRequest struct {
	EventIDs []uint `json:"eventIds"`
}

type ScanRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type ScanResponse struct {
	Success bool              `json:"success"`
	Result  domain.ScanResult `json:"result"`
	Log     *domain.ScanLog   `json:"log"`
}
