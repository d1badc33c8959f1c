package handlers

import (
	"errors"

	"github.com/SundayYogurt/eventhub_service/internal/api/rest"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	pkgutils "github.com/SundayYogurt/eventhub_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EOApplyHandler serves the applicant side of the EO verification flow.
type EOApplyHandler struct {
	svc       services.VerificationService
	auth      helper.Auth
	maxUpload int64
	log       *zap.Logger
}

func NewEOApplyHandler(svc services.VerificationService, auth helper.Auth, maxUpload int64, log *zap.Logger) *EOApplyHandler {
	return &EOApplyHandler{svc: svc, auth: auth, maxUpload: maxUpload, log: log}
}

func (h *EOApplyHandler) SetupRoutes(api fiber.Router) {
	// per route: /eo also hosts the authority-guarded management routes
	eo := api.Group("/eo")
	userAuth := middleware.UserAuth(h.auth)
	eo.Post("/apply", userAuth, h.Apply)
	eo.Put("/update", userAuth, h.Update)
	eo.Get("/my-status", userAuth, h.MyStatus)
}

// POST /api/eo/apply
// form-data: fullName, nik, phone, address, ktpImage=<image>, selfieImage=<image>
func (h *EOApplyHandler) Apply(ctx *fiber.Ctx) error {
	user, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}

	form := dto.EOApplyForm{
		FullName: ctx.FormValue("fullName"),
		Nik:      ctx.FormValue("nik"),
		Phone:    ctx.FormValue("phone"),
		Address:  ctx.FormValue("address"),
	}
	files, err := h.readFiles(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	v, err := h.svc.Apply(ctx.UserContext(), user.ID, form, files)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, v)
}

// PUT /api/eo/update
// form-data: any of the apply fields; absent fields keep their value
func (h *EOApplyHandler) Update(ctx *fiber.Ctx) error {
	user, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}

	form := dto.EOUpdateForm{
		FullName: optionalValue(ctx, "fullName"),
		Nik:      optionalValue(ctx, "nik"),
		Phone:    optionalValue(ctx, "phone"),
		Address:  optionalValue(ctx, "address"),
	}
	files, err := h.readFiles(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	v, err := h.svc.Update(ctx.UserContext(), user.ID, form, files)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, v)
}

// GET /api/eo/my-status
func (h *EOApplyHandler) MyStatus(ctx *fiber.Ctx) error {
	user, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}

	v, err := h.svc.Status(ctx.UserContext(), user.ID)
	if errors.Is(err, services.ErrNotApplied) {
		return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"status": services.ErrNotApplied.Code})
	}
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, v)
}

func (h *EOApplyHandler) readFiles(ctx *fiber.Ctx) (dto.EOFiles, error) {
	var files dto.EOFiles
	var err error
	if files.Ktp, err = h.readFile(ctx, "ktpImage"); err != nil {
		return files, err
	}
	if files.Selfie, err = h.readFile(ctx, "selfieImage"); err != nil {
		return files, err
	}
	return files, nil
}

// readFile returns nil when the part is absent.
func (h *EOApplyHandler) readFile(ctx *fiber.Ctx, field string) (*dto.ImageFile, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		// absent part, or the body is not multipart at all
		return nil, nil
	}

	b, err := pkgutils.ReadFormFile(fh, h.maxUpload)
	if errors.Is(err, pkgutils.ErrFileTooLarge) {
		return nil, &services.ValidationError{Fields: map[string]string{field: "must be at most 2MB"}}
	}
	if err != nil {
		return nil, err
	}
	return &dto.ImageFile{Filename: fh.Filename, Bytes: b}, nil
}

// optionalValue distinguishes an absent form field from an empty one.
func optionalValue(ctx *fiber.Ctx, key string) *string {
	if form, err := ctx.MultipartForm(); err == nil {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			v := vals[0]
			return &v
		}
		return nil
	}
	if ctx.Request().PostArgs().Has(key) {
		v := string(ctx.Request().PostArgs().Peek(key))
		return &v
	}
	return nil
}
