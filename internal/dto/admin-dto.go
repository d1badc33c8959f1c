package dto

type SetStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
	// older clients send the reason as note
	Note string `json:"note"`
}
