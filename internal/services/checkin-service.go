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

type CheckInService interface {
	// Scan redeems code at the gate of eventID. An already used ticket is a
	// reported outcome (Success false), not an error.
	Scan(ctx context.Context, eoID, eventID, actorUserID uint, code string) (*dto.ScanResponse, error)
	ListScans(ctx context.Context, auth Authority, eventID uint, limit, offset int) ([]domain.ScanLog, error)
}

type checkInService struct {
	team    repository.TeamRepository
	events  repository.EventRepository
	tickets repository.TicketRepository
	log     *zap.Logger
}

func NewCheckInService(
	team repository.TeamRepository,
	events repository.EventRepository,
	tickets repository.TicketRepository,
	log *zap.Logger,
) CheckInService {
	return &checkInService{team: team, events: events, tickets: tickets, log: log}
}

func (s *checkInService) Scan(ctx context.Context, eoID, eventID, actorUserID uint, code string) (*dto.ScanResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("code", "is required")
	}

	// 1) the actor must be on the team, and a scanner must be allowed at this event
	member, err := s.team.FindMember(ctx, eoID, actorUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	switch member.Role {
	case domain.TeamRoleAdmin:
	case domain.TeamRoleScanner:
		if !scannerAuthority(actorUserID, *member).CanScan(eventID) {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	// 2) the gate's event must be live and belong to the EO
	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if event.EOID != eoID {
		return nil, ErrNotFound
	}

	// 3) ticket with its type
	ticket, err := s.tickets.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}

	// 4) valid ticket, wrong gate
	if ticket.TicketType.EventID != eventID {
		return nil, ErrWrongEvent
	}

	// 5) fast path for a ticket already used
	if ticket.IsUsed {
		return s.alreadyUsed(ctx, eventID, member.ID, ticket.ID)
	}

	// 6) conditional flip; losing a race lands on the same path as 5
	log, err := s.tickets.Redeem(ctx, ticket.ID, eventID, member.ID)
	if errors.Is(err, repository.ErrConflict) {
		return s.alreadyUsed(ctx, eventID, member.ID, ticket.ID)
	}
	if err != nil {
		return nil, err
	}

	scanTotal.WithLabelValues(string(domain.ScanOK)).Inc()
	s.log.Info("ticket redeemed",
		zap.Uint("event_id", eventID),
		zap.Uint("ticket_id", ticket.ID),
		zap.Uint("member_id", member.ID),
	)
	return &dto.ScanResponse{Success: true, Result: domain.ScanOK, Log: log}, nil
}

func (s *checkInService) alreadyUsed(ctx context.Context, eventID, memberID, ticketID uint) (*dto.ScanResponse, error) {
	log := &domain.ScanLog{
		EventID:  eventID,
		MemberID: memberID,
		TicketID: ticketID,
		Result:   domain.ScanAlreadyUsed,
	}
	if err := s.tickets.AppendScanLog(ctx, log); err != nil {
		return nil, err
	}
	scanTotal.WithLabelValues(string(domain.ScanAlreadyUsed)).Inc()
	return &dto.ScanResponse{Success: false, Result: domain.ScanAlreadyUsed, Log: log}, nil
}

func (s *checkInService) ListScans(ctx context.Context, auth Authority, eventID uint, limit, offset int) ([]domain.ScanLog, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := auth.Scope(event.EOID); err != nil {
		return nil, err
	}
	if !auth.CanScan(eventID) {
		return nil, ErrNotFound
	}
	limit, offset = clampPage(limit, offset)
	return s.tickets.ListScanLogs(ctx, eventID, limit, offset)
}
