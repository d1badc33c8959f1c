package handlers

import (
	"strings"

	"github.com/SundayYogurt/eventhub_service/internal/api/rest"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	verification services.VerificationService
	admin        services.AdminService
	auth         helper.Auth
	log          *zap.Logger
}

func NewAdminHandler(verification services.VerificationService, admin services.AdminService, auth helper.Auth, log *zap.Logger) *AdminHandler {
	return &AdminHandler{verification: verification, admin: admin, auth: auth, log: log}
}

func (h *AdminHandler) SetupRoutes(api fiber.Router) {
	admin := api.Group("/admin")
	adminAuth := middleware.AdminAuth(h.auth)

	// EO verification
	admin.Get("/eo/pending", adminAuth, h.listByStatus(domain.VerificationPending))
	admin.Get("/eo/rejected", adminAuth, h.listByStatus(domain.VerificationRejected))
	admin.Get("/eo/approved", adminAuth, h.ListApproved)
	admin.Get("/eo/:id", adminAuth, h.Detail)
	admin.Get("/eo/:id/audit", adminAuth, h.VerificationAudit)
	admin.Post("/eo/:id/approve", adminAuth, h.Approve)
	admin.Post("/eo/:id/reject", adminAuth, h.Reject)

	// users
	admin.Get("/users", adminAuth, h.ListUsers)
	admin.Get("/users/:id", adminAuth, h.UserDetail)
	admin.Put("/users/:id/status", adminAuth, h.SetUserStatus)
	admin.Delete("/users/:id", adminAuth, h.DeleteUser)

	admin.Get("/audit-logs", adminAuth, h.AuditLogs)

	// notifications
	admin.Get("/notifications", adminAuth, h.Notifications)
	admin.Get("/notifications/details", adminAuth, h.NotificationDetails)
}

func (h *AdminHandler) listByStatus(status domain.VerificationStatus) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		limit, offset := rest.Page(ctx)
		list, err := h.verification.ListByStatus(ctx.UserContext(), status, limit, offset)
		if err != nil {
			return rest.Fail(ctx, h.log, err)
		}
		return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
	}
}

func (h *AdminHandler) ListApproved(ctx *fiber.Ctx) error {
	limit, offset := rest.Page(ctx)
	list, err := h.verification.ListApproved(ctx.UserContext(), limit, offset)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
}

func (h *AdminHandler) Detail(ctx *fiber.Ctx) error {
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	v, err := h.verification.Detail(ctx.UserContext(), id)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, v)
}

func (h *AdminHandler) VerificationAudit(ctx *fiber.Ctx) error {
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	logs, err := h.admin.VerificationAudit(ctx.UserContext(), id)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, logs)
}

func (h *AdminHandler) Approve(ctx *fiber.Ctx) error {
	admin, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	res, err := h.verification.Approve(ctx.UserContext(), admin, id)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

func (h *AdminHandler) Reject(ctx *fiber.Ctx) error {
	admin, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	var requestBody dto.RejectRequest
	// an empty body is a blank reason, not a malformed request
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&requestBody); err != nil {
			return rest.BadBody(ctx)
		}
	}
	reason := requestBody.Reason
	if strings.TrimSpace(reason) == "" {
		reason = requestBody.Note
	}

	v, err := h.verification.Reject(ctx.UserContext(), admin, id, reason)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, v)
}

func (h *AdminHandler) ListUsers(ctx *fiber.Ctx) error {
	limit, offset := rest.Page(ctx)
	page, err := h.admin.ListUsers(ctx.UserContext(), limit, offset)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, page)
}

func (h *AdminHandler) UserDetail(ctx *fiber.Ctx) error {
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	detail, err := h.admin.UserDetail(ctx.UserContext(), id)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, detail)
}

func (h *AdminHandler) SetUserStatus(ctx *fiber.Ctx) error {
	admin, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	var requestBody dto.SetStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}
	if requestBody.IsActive == nil {
		return rest.Fail(ctx, h.log, &services.ValidationError{Fields: map[string]string{"isActive": "is required"}})
	}

	if err := h.admin.SetActive(ctx.UserContext(), admin, id, *requestBody.IsActive); err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"id": id, "is_active": *requestBody.IsActive})
}

func (h *AdminHandler) DeleteUser(ctx *fiber.Ctx) error {
	admin, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	if err := h.admin.DeleteUser(ctx.UserContext(), admin, id); err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *AdminHandler) AuditLogs(ctx *fiber.Ctx) error {
	limit, _ := rest.Page(ctx)
	logs, err := h.admin.AuditLogs(ctx.UserContext(), limit)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, logs)
}

func (h *AdminHandler) Notifications(ctx *fiber.Ctx) error {
	counts, err := h.admin.Notifications(ctx.UserContext())
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, counts)
}

func (h *AdminHandler) NotificationDetails(ctx *fiber.Ctx) error {
	limit, _ := rest.Page(ctx)
	details, err := h.admin.NotificationDetails(ctx.UserContext(), limit)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, details)
}
