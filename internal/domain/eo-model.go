package domain

import "time"

type TeamRole string

const (
	TeamRoleAdmin   TeamRole = "ADMIN"
	TeamRoleScanner TeamRole = "SCANNER"
)

type EO struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"uniqueIndex;not null" json:"owner_id"`
	Name    string `gorm:"type:varchar(100);not null" json:"name"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EO) TableName() string { return "eos" }

type EOTeamMember struct {
	ID     uint     `gorm:"primaryKey" json:"id"`
	EOID   uint     `gorm:"column:eo_id;not null;uniqueIndex:uidx_eo_team_member" json:"eo_id"`
	UserID uint     `gorm:"not null;uniqueIndex:uidx_eo_team_member" json:"user_id"`
	Role   TeamRole `gorm:"type:varchar(20);not null" json:"role"`

	// scanner allow-list; empty means every event of the EO
	Events []EventAccess `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	User   *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (EOTeamMember) TableName() string { return "eo_team_members" }

type EventAccess struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	MemberID uint `gorm:"not null;uniqueIndex:uidx_event_access" json:"member_id"`
	EventID  uint `gorm:"not null;uniqueIndex:uidx_event_access" json:"event_id"`
}

func (EventAccess) TableName() string { return "event_accesses" }
