package dto

import "time"

const (
	EventEOApproved = "eo.approved"
	EventEORejected = "eo.rejected"
)

// EOEvent is published after an application decision is committed.
type EOEvent struct {
	Type           string    `json:"type"`
	VerificationID uint      `json:"verification_id"`
	UserID         uint      `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	EOID           uint      `json:"eo_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
