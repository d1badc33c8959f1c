package handlers

import (
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/api/rest"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CookieConfig struct {
	Secure   bool
	UserTTL  time.Duration
	AdminTTL time.Duration
}

type AuthHandler struct {
	svc     services.AuthService
	auth    helper.Auth
	cookies CookieConfig
	log     *zap.Logger
}

func NewAuthHandler(svc services.AuthService, auth helper.Auth, cookies CookieConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, auth: auth, cookies: cookies, log: log}
}

func (h *AuthHandler) SetupRoutes(api fiber.Router) {
	// =========================
	// USER
	// =========================
	user := api.Group("/auth")
	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
	user.Post("/logout", h.Logout)
	user.Get("/me", middleware.UserAuth(h.auth), h.Me)

	// =========================
	// ADMIN
	// =========================
	admin := api.Group("/admin")
	admin.Post("/login", h.AdminLogin)
	admin.Post("/logout", h.AdminLogout)
	admin.Get("/me", middleware.AdminAuth(h.auth), h.Me)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	user, err := h.svc.Register(ctx.UserContext(), requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.ToUserResponse(user))
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	res, err := h.svc.Login(ctx.UserContext(), requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	h.setCookie(ctx, middleware.UserCookie, res.Token, h.cookies.UserTTL)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

func (h *AuthHandler) AdminLogin(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	res, err := h.svc.AdminLogin(ctx.UserContext(), requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	h.setCookie(ctx, middleware.AdminCookie, res.Token, h.cookies.AdminTTL)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	h.setCookie(ctx, middleware.UserCookie, "", -time.Hour)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) AdminLogout(ctx *fiber.Ctx) error {
	h.setCookie(ctx, middleware.AdminCookie, "", -time.Hour)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(ctx *fiber.Ctx) error {
	current, err := helper.GetCurrentUser(ctx)
	if err != nil {
		return rest.Fail(ctx, h.log, services.ErrInvalidToken)
	}

	user, err := h.svc.Me(ctx.UserContext(), current.ID)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.ToUserResponse(user))
}

func (h *AuthHandler) setCookie(ctx *fiber.Ctx, name, value string, ttl time.Duration) {
	ctx.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
