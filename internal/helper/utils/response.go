package utils

import "github.com/gofiber/fiber/v2"

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ResponseError(ctx *fiber.Ctx, status int, code, msg string, details interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"error": ErrorBody{
			Code:    code,
			Message: msg,
			Details: details,
		},
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"success": true, "data": data})
}
