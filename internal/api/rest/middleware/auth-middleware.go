package middleware

import (
	"strings"

	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	UserCookie  = "token"
	AdminCookie = "admin_token"

	authorityKey = "authority"
)

// UserAuth accepts only user scope tokens.
func UserAuth(auth helper.Auth) fiber.Handler {
	return tokenAuth(auth, helper.ScopeUser, UserCookie)
}

// AdminAuth accepts only admin scope tokens.
func AdminAuth(auth helper.Auth) fiber.Handler {
	return tokenAuth(auth, helper.ScopeAdmin, AdminCookie)
}

func tokenAuth(auth helper.Auth, scope helper.Scope, cookie string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies(cookie))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
		}

		user, err := auth.VerifyToken(scope, tokenStr)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized,
				services.ErrInvalidToken.Code, services.ErrInvalidToken.Message, nil)
		}

		ctx.Locals("user", user)
		return ctx.Next()
	}
}

// EOAuthority resolves what the caller may do inside its EO. Runs after UserAuth.
func EOAuthority(access services.AccessService, log *zap.Logger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, err := helper.GetCurrentUser(ctx)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized,
				services.ErrInvalidToken.Code, services.ErrInvalidToken.Message, nil)
		}

		authority, err := access.Resolve(ctx.UserContext(), user)
		if err != nil {
			if services.Code(err) == services.ErrForbidden.Code {
				return utils.ResponseError(ctx, fiber.StatusForbidden,
					services.ErrForbidden.Code, "neither EO owner nor EO team member", nil)
			}
			log.Error("resolve authority", zap.Uint("user_id", user.ID), zap.Error(err))
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		}

		ctx.Locals(authorityKey, authority)
		return ctx.Next()
	}
}

func CurrentAuthority(ctx *fiber.Ctx) (services.Authority, bool) {
	a, ok := ctx.Locals(authorityKey).(services.Authority)
	return a, ok
}
