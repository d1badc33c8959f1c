package domain

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// EoVerification is one user's application to become an event organizer.
// Rows are updated in place on resubmission and never deleted.
type EoVerification struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName string `gorm:"type:varchar(100);not null" json:"full_name"`

	// --- NIK ---
	// only the masked form is ever shown; the hash is compared with bcrypt
	// and the fingerprint carries the unique index.
	NikMasked      string `gorm:"type:varchar(32);not null" json:"nik_masked"`
	NikHash        string `gorm:"type:varchar(100);not null" json:"-"`
	NikFingerprint string `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`

	Phone       string `gorm:"type:varchar(20);not null" json:"phone"`
	Address     string `gorm:"type:text;not null" json:"address"`
	KtpImage    string `gorm:"type:text;not null" json:"ktp_image"`
	SelfieImage string `gorm:"type:text;not null" json:"selfie_image"`

	Status     VerificationStatus `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`
	Note       *string            `gorm:"type:text" json:"note,omitempty"`
	ReviewedBy *uint              `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time         `json:"reviewed_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EoVerification) TableName() string { return "eo_verifications" }
