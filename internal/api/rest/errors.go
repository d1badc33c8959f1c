package rest

import (
	"errors"
	"strconv"

	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var statusByCode = map[string]int{
	"VALIDATION_ERROR": fiber.StatusBadRequest,
	"REASON_REQUIRED":  fiber.StatusBadRequest,
	"WRONG_EVENT":      fiber.StatusBadRequest,

	"INVALID_TOKEN":       fiber.StatusUnauthorized,
	"INVALID_CREDENTIALS": fiber.StatusUnauthorized,

	"FORBIDDEN":        fiber.StatusForbidden,
	"ACCOUNT_DISABLED": fiber.StatusForbidden,
	"EO_NOT_APPROVED":  fiber.StatusForbidden,
	"OWNER_IMMUTABLE":  fiber.StatusForbidden,

	"NOT_FOUND":        fiber.StatusNotFound,
	"NOT_APPLIED":      fiber.StatusNotFound,
	"TICKET_NOT_FOUND": fiber.StatusNotFound,

	"EMAIL_TAKEN":        fiber.StatusConflict,
	"ALREADY_PENDING":    fiber.StatusConflict,
	"ALREADY_APPROVED":   fiber.StatusConflict,
	"ALREADY_REJECTED":   fiber.StatusConflict,
	"NOT_PENDING":        fiber.StatusConflict,
	"NOT_EDITABLE":       fiber.StatusConflict,
	"NIK_DUPLICATE":      fiber.StatusConflict,
	"MEMBER_EXISTS":      fiber.StatusConflict,
	"MEMBER_OF_OTHER_EO": fiber.StatusConflict,
	"TICKET_TYPE_IN_USE": fiber.StatusConflict,
}

// Fail writes err in the common envelope. Anything that is not a business
// error is logged and hidden behind INTERNAL.
func Fail(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid input", ve.Fields)
	}

	var be *services.Error
	if errors.As(err, &be) {
		status, ok := statusByCode[be.Code]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return utils.ResponseError(ctx, status, be.Code, be.Message, nil)
	}

	log.Error("request failed",
		zap.String("request_id", RequestID(ctx)),
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.Error(err),
	)
	return utils.ResponseError(ctx, fiber.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func BadBody(ctx *fiber.Ctx) error {
	return utils.ResponseError(ctx, fiber.StatusBadRequest, "VALIDATION_ERROR", "malformed request body", nil)
}

// RequestID is set by the requestid middleware.
func RequestID(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// ParamID reads a positive numeric route parameter; anything else is not found.
func ParamID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, services.ErrNotFound
	}
	return uint(id), nil
}

func Page(ctx *fiber.Ctx) (limit, offset int) {
	return ctx.QueryInt("limit", 20), ctx.QueryInt("offset", 0)
}
