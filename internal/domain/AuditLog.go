package domain

import "time"

const (
	AuditApproveEO      = "APPROVE_EO"
	AuditRejectEO       = "REJECT_EO"
	AuditActivateUser   = "ACTIVATE_USER"
	AuditDeactivateUser = "DEACTIVATE_USER"
	AuditDeleteUser     = "DELETE_USER"
)

type AdminAuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	Action    string    `gorm:"type:varchar(100);not null" json:"action"`
	TargetID  uint      `gorm:"not null;index" json:"target_id"`
	Detail    *string   `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type EoAuditLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	VerificationID uint      `gorm:"not null;index" json:"verification_id"`
	Action         string    `gorm:"type:varchar(100);not null" json:"action"`
	ActorID        uint      `gorm:"not null" json:"actor_id"`
	ActorRole      Role      `gorm:"type:varchar(20);not null" json:"actor_role"`
	Note           *string   `gorm:"type:text" json:"note,omitempty"`
	Meta           string    `gorm:"type:text" json:"meta,omitempty"` // JSON
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
