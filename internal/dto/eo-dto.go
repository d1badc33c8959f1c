package dto

import "github.com/SundayYogurt/eventhub_service/internal/domain"

// EOApplyForm is the multipart text part of an application.
type EOApplyForm struct {
	FullName string `form:"fullName" validate:"required,min=3,max=100"`
	Nik      string `form:"nik" validate:"required,len=16,numeric"`
	Phone    string `form:"phone" validate:"required,min=10,max=15,idphone"`
	Address  string `form:"address" validate:"required,min=10,max=500"`
}

// EOUpdateForm holds only the fields the applicant sent.
type EOUpdateForm struct {
	FullName *string
	Nik      *string
	Phone    *string
	Address  *string
}

type ImageFile struct {
	Filename string
	Bytes    []byte
}

type EOFiles struct {
	Ktp    *ImageFile
	Selfie *ImageFile
}

type ApproveResponse struct {
	Verification *domain.EoVerification `json:"verification"`
	EO           *domain.EO             `json:"eo"`
}
