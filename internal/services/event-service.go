package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"go.uber.org/zap"
)

const defaultTimezone = "Asia/Jakarta"

// EventService is the EO-scoped management surface. Every call takes the
// caller's Authority; a resource of another EO is reported as not found.
type EventService interface {
	Create(ctx context.Context, auth Authority, in dto.EventInput) (*domain.Event, error)
	List(ctx context.Context, auth Authority) ([]domain.Event, error)
	Get(ctx context.Context, auth Authority, id uint) (*domain.Event, error)
	Update(ctx context.Context, auth Authority, id uint, in dto.EventUpdate) (*domain.Event, error)
	SetStatus(ctx context.Context, auth Authority, id uint, status domain.EventStatus) (*domain.Event, error)
	Delete(ctx context.Context, auth Authority, id uint) error

	CreateTicketType(ctx context.Context, auth Authority, eventID uint, in dto.TicketTypeInput) (*domain.TicketType, error)
	ListTicketTypes(ctx context.Context, auth Authority, eventID uint) ([]domain.TicketType, error)
	UpdateTicketType(ctx context.Context, auth Authority, id uint, in dto.TicketTypeUpdate) (*domain.TicketType, error)
	DeleteTicketType(ctx context.Context, auth Authority, id uint) error
}

type eventService struct {
	repo repository.EventRepository
	log  *zap.Logger
}

func NewEventService(repo repository.EventRepository, log *zap.Logger) EventService {
	return &eventService{repo: repo, log: log}
}

/* =========================
   EVENTS
========================= */

func (s *eventService) Create(ctx context.Context, auth Authority, in dto.EventInput) (*domain.Event, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}

	e := &domain.Event{
		EOID:        auth.EOID,
		Title:       in.Title,
		Description: in.Description,
		Type:        domain.EventOffline,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Timezone:    defaultTimezone,
		TicketLimit: in.TicketLimit,
		SaleStart:   in.SaleStart,
		SaleEnd:     in.SaleEnd,
		Banner:      in.Banner,
		Status:      domain.EventDraft,
	}
	if in.Type == string(domain.EventOnline) {
		e.Type = domain.EventOnline
	}
	if tz := strings.TrimSpace(in.Timezone); tz != "" {
		e.Timezone = tz
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("event created", zap.Uint("eo_id", auth.EOID), zap.Uint("event_id", e.ID))
	return e, nil
}

func (s *eventService) List(ctx context.Context, auth Authority) ([]domain.Event, error) {
	// a scanner only sees its allow-list
	var ids []uint
	if auth.Kind == KindScanner && auth.EventIDs != nil {
		ids = auth.EventIDs
	}
	return s.repo.ListByEO(ctx, auth.EOID, ids)
}

func (s *eventService) Get(ctx context.Context, auth Authority, id uint) (*domain.Event, error) {
	e, err := s.scopedEvent(ctx, auth, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanScan(e.ID) {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *eventService) Update(ctx context.Context, auth Authority, id uint, in dto.EventUpdate) (*domain.Event, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	if err := validateStruct(&in); err != nil {
		return nil, err
	}

	e, err := s.scopedEvent(ctx, auth, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Type != nil {
		fields["type"] = *in.Type
	}
	if in.Timezone != nil {
		fields["timezone"] = strings.TrimSpace(*in.Timezone)
	}
	if in.TicketLimit != nil {
		fields["ticket_limit"] = *in.TicketLimit
	}
	if in.Banner != nil {
		fields["banner"] = *in.Banner
	}

	start, end := e.StartDate, e.EndDate
	if in.StartDate != nil {
		start = *in.StartDate
		fields["start_date"] = start
	}
	if in.EndDate != nil {
		end = *in.EndDate
		fields["end_date"] = end
	}
	if !end.After(start) {
		return nil, invalid("endDate", "must be after startDate")
	}

	if err := s.repo.Update(ctx, e.ID, fields); err != nil {
		return nil, notFound(err)
	}
	return s.scopedEvent(ctx, auth, id)
}

func (s *eventService) SetStatus(ctx context.Context, auth Authority, id uint, status domain.EventStatus) (*domain.Event, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	req := dto.EventStatusRequest{Status: status}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	e, err := s.scopedEvent(ctx, auth, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e.ID, map[string]any{"status": status}); err != nil {
		return nil, notFound(err)
	}
	e.Status = status
	return e, nil
}

func (s *eventService) Delete(ctx context.Context, auth Authority, id uint) error {
	if err := auth.requireManage(); err != nil {
		return err
	}
	e, err := s.scopedEvent(ctx, auth, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, e.ID); err != nil {
		return notFound(err)
	}
	s.log.Info("event deleted", zap.Uint("eo_id", auth.EOID), zap.Uint("event_id", e.ID))
	return nil
}

/* =========================
   TICKET TYPES
========================= */

func (s *eventService) CreateTicketType(ctx context.Context, auth Authority, eventID uint, in dto.TicketTypeInput) (*domain.TicketType, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	if _, err := s.scopedEvent(ctx, auth, eventID); err != nil {
		return nil, err
	}

	tt := &domain.TicketType{
		EventID:     eventID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quota:       in.Quota,
		Status:      "active",
	}
	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return nil, err
	}
	return tt, nil
}

func (s *eventService) ListTicketTypes(ctx context.Context, auth Authority, eventID uint) ([]domain.TicketType, error) {
	if _, err := s.Get(ctx, auth, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListTicketTypes(ctx, eventID)
}

func (s *eventService) UpdateTicketType(ctx context.Context, auth Authority, id uint, in dto.TicketTypeUpdate) (*domain.TicketType, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	tt, err := s.scopedTicketType(ctx, auth, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Quota != nil {
		fields["quota"] = *in.Quota
	}
	if err := s.repo.UpdateTicketType(ctx, tt.ID, fields); err != nil {
		return nil, notFound(err)
	}
	return s.scopedTicketType(ctx, auth, id)
}

func (s *eventService) DeleteTicketType(ctx context.Context, auth Authority, id uint) error {
	if err := auth.requireManage(); err != nil {
		return err
	}
	tt, err := s.scopedTicketType(ctx, auth, id)
	if err != nil {
		return err
	}
	err = s.repo.DeleteTicketType(ctx, tt.ID)
	if errors.Is(err, repository.ErrConflict) {
		return ErrTicketTypeInUse
	}
	return notFound(err)
}

/* =========================
   scope helpers
========================= */

func (s *eventService) scopedEvent(ctx context.Context, auth Authority, id uint) (*domain.Event, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := auth.Scope(e.EOID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *eventService) scopedTicketType(ctx context.Context, auth Authority, id uint) (*domain.TicketType, error) {
	tt, err := s.repo.FindTicketType(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := auth.Scope(tt.Event.EOID); err != nil {
		return nil, err
	}
	return tt, nil
}

// notFound turns the repository sentinel into the service one.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
