package handlers

import (
	"github.com/SundayYogurt/eventhub_service/internal/api/rest"
	"github.com/SundayYogurt/eventhub_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/helper/utils"
	"github.com/SundayYogurt/eventhub_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EOHandler serves everything an EO team does inside its own organization.
type EOHandler struct {
	events  services.EventService
	team    services.TeamService
	checkin services.CheckInService
	access  services.AccessService
	auth    helper.Auth
	log     *zap.Logger
}

func NewEOHandler(
	events services.EventService,
	team services.TeamService,
	checkin services.CheckInService,
	access services.AccessService,
	auth helper.Auth,
	log *zap.Logger,
) *EOHandler {
	return &EOHandler{events: events, team: team, checkin: checkin, access: access, auth: auth, log: log}
}

func (h *EOHandler) SetupRoutes(api fiber.Router) {
	eo := api.Group("/eo")
	userAuth := middleware.UserAuth(h.auth)
	authority := middleware.EOAuthority(h.access, h.log)

	// events
	eo.Get("/events", userAuth, authority, h.ListEvents)
	eo.Post("/events", userAuth, authority, h.CreateEvent)
	eo.Get("/events/:id", userAuth, authority, h.GetEvent)
	eo.Put("/events/:id", userAuth, authority, h.UpdateEvent)
	eo.Delete("/events/:id", userAuth, authority, h.DeleteEvent)
	eo.Patch("/events/:id/status", userAuth, authority, h.SetEventStatus)

	// ticket types
	eo.Get("/events/:eventId/ticket-types", userAuth, authority, h.ListTicketTypes)
	eo.Post("/events/:eventId/ticket-types", userAuth, authority, h.CreateTicketType)
	eo.Put("/ticket-types/:id", userAuth, authority, h.UpdateTicketType)
	eo.Delete("/ticket-types/:id", userAuth, authority, h.DeleteTicketType)

	// team
	eo.Get("/team", userAuth, authority, h.ListTeam)
	eo.Post("/team", userAuth, authority, h.AddMember)
	eo.Put("/team/:memberId/events", userAuth, authority, h.SetMemberEvents)
	eo.Delete("/team/:memberId", userAuth, authority, h.RemoveMember)

	// gate
	eo.Post("/events/:eventId/scan", userAuth, authority, h.Scan)
	eo.Get("/events/:eventId/scans", userAuth, authority, h.ListScans)
}

/* =========================
   EVENTS
========================= */

func (h *EOHandler) ListEvents(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	list, err := h.events.List(ctx.UserContext(), auth)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
}

func (h *EOHandler) CreateEvent(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	var requestBody dto.EventInput
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	e, err := h.events.Create(ctx.UserContext(), auth, requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, e)
}

func (h *EOHandler) GetEvent(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	e, err := h.events.Get(ctx.UserContext(), auth, id)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, e)
}

func (h *EOHandler) UpdateEvent(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	var requestBody dto.EventUpdate
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	e, err := h.events.Update(ctx.UserContext(), auth, id, requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, e)
}

func (h *EOHandler) SetEventStatus(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	var requestBody dto.EventStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	e, err := h.events.SetStatus(ctx.UserContext(), auth, id, requestBody.Status)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, e)
}

func (h *EOHandler) DeleteEvent(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	if err := h.events.Delete(ctx.UserContext(), auth, id); err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"id": id})
}

/* =========================
   TICKET TYPES
========================= */

func (h *EOHandler) ListTicketTypes(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	eventID, err := rest.ParamID(ctx, "eventId")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	list, err := h.events.ListTicketTypes(ctx.UserContext(), auth, eventID)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
}

func (h *EOHandler) CreateTicketType(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	eventID, err := rest.ParamID(ctx, "eventId")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	var requestBody dto.TicketTypeInput
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	tt, err := h.events.CreateTicketType(ctx.UserContext(), auth, eventID, requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, tt)
}

func (h *EOHandler) UpdateTicketType(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	var requestBody dto.TicketTypeUpdate
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	tt, err := h.events.UpdateTicketType(ctx.UserContext(), auth, id, requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, tt)
}

func (h *EOHandler) DeleteTicketType(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	id, err := rest.ParamID(ctx, "id")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	if err := h.events.DeleteTicketType(ctx.UserContext(), auth, id); err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"id": id})
}

/* =========================
   TEAM
========================= */

func (h *EOHandler) ListTeam(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	list, err := h.team.List(ctx.UserContext(), auth)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
}

func (h *EOHandler) AddMember(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	var requestBody dto.AddMemberRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	m, err := h.team.Add(ctx.UserContext(), auth, requestBody)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, m)
}

func (h *EOHandler) SetMemberEvents(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	memberID, err := rest.ParamID(ctx, "memberId")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	var requestBody dto.MemberEventsRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	m, err := h.team.SetEvents(ctx.UserContext(), auth, memberID, requestBody.EventIDs)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, m)
}

func (h *EOHandler) RemoveMember(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	memberID, err := rest.ParamID(ctx, "memberId")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}

	if err := h.team.Remove(ctx.UserContext(), auth, memberID); err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"id": memberID})
}

/* =========================
   GATE
========================= */

// Scan answers with the scan response itself so the gate app can read
// success/result at the top level.
func (h *EOHandler) Scan(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	eventID, err := rest.ParamID(ctx, "eventId")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	var requestBody dto.ScanRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return rest.BadBody(ctx)
	}

	res, err := h.checkin.Scan(ctx.UserContext(), auth.EOID, eventID, auth.UserID, requestBody.Code)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	if !res.Success {
		return ctx.Status(fiber.StatusBadRequest).JSON(res)
	}
	return ctx.Status(fiber.StatusOK).JSON(res)
}

func (h *EOHandler) ListScans(ctx *fiber.Ctx) error {
	auth, _ := middleware.CurrentAuthority(ctx)
	eventID, err := rest.ParamID(ctx, "eventId")
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	limit, offset := rest.Page(ctx)

	logs, err := h.checkin.ListScans(ctx.UserContext(), auth, eventID, limit, offset)
	if err != nil {
		return rest.Fail(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, logs)
}
