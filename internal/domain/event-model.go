package domain

import (
	"time"

	"gorm.io/gorm"
)

type EventType string

const (
	EventOnline  EventType = "ONLINE"
	EventOffline EventType = "OFFLINE"
)

type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventFinished  EventStatus = "FINISHED"
	EventCancelled EventStatus = "CANCELLED"
)

type Event struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	EOID        uint        `gorm:"column:eo_id;not null;index" json:"eo_id"`
	Title       string      `gorm:"type:varchar(200);not null" json:"title"`
	Description *string     `gorm:"type:text" json:"description,omitempty"`
	Type        EventType   `gorm:"type:varchar(20);not null;default:OFFLINE" json:"type"`
	StartDate   time.Time   `gorm:"not null" json:"start_date"`
	EndDate     time.Time   `gorm:"not null" json:"end_date"`
	Timezone    string      `gorm:"type:varchar(64);not null;default:Asia/Jakarta" json:"timezone"`
	TicketLimit *int        `json:"ticket_limit,omitempty"`
	SaleStart   *time.Time  `json:"sale_start,omitempty"`
	SaleEnd     *time.Time  `json:"sale_end,omitempty"`
	Banner      *string     `gorm:"type:text" json:"banner,omitempty"`
	Status      EventStatus `gorm:"type:varchar(20);not null;default:DRAFT" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type TicketType struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	EventID     uint    `gorm:"not null;index" json:"event_id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Price       int64   `gorm:"not null" json:"price"`
	Quota       int     `gorm:"not null" json:"quota"`
	Status      string  `gorm:"type:varchar(20);not null;default:active" json:"status"`

	Event *Event `gorm:"foreignKey:EventID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Ticket struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TicketTypeID uint       `gorm:"not null;index" json:"ticket_type_id"`
	Code         string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	HolderName   string     `gorm:"type:varchar(100)" json:"holder_name,omitempty"`
	IsUsed       bool       `gorm:"not null;default:false" json:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty"`

	TicketType *TicketType `gorm:"foreignKey:TicketTypeID" json:"ticket_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type ScanResult string

const (
	ScanOK          ScanResult = "OK"
	ScanAlreadyUsed ScanResult = "ALREADY_USED"
)

// ScanLog is append-only; one row per redemption attempt that reached a ticket.
type ScanLog struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"not null;index" json:"event_id"`
	MemberID  uint       `gorm:"not null;index" json:"member_id"`
	TicketID  uint       `gorm:"not null;index" json:"ticket_id"`
	Result    ScanResult `gorm:"type:varchar(20);not null" json:"result"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
