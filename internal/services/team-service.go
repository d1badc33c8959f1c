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

type TeamService interface {
	List(ctx context.Context, auth Authority) ([]domain.EOTeamMember, error)
	Add(ctx context.Context, auth Authority, req dto.AddMemberRequest) (*domain.EOTeamMember, error)
	SetEvents(ctx context.Context, auth Authority, memberID uint, eventIDs []uint) (*domain.EOTeamMember, error)
	Remove(ctx context.Context, auth Authority, memberID uint) error
}

type teamService struct {
	team   repository.TeamRepository
	users  repository.UserRepository
	events repository.EventRepository
	log    *zap.Logger
}

func NewTeamService(
	team repository.TeamRepository,
	users repository.UserRepository,
	events repository.EventRepository,
	log *zap.Logger,
) TeamService {
	return &teamService{team: team, users: users, events: events, log: log}
}

func (s *teamService) List(ctx context.Context, auth Authority) ([]domain.EOTeamMember, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	return s.team.ListMembers(ctx, auth.EOID)
}

func (s *teamService) Add(ctx context.Context, auth Authority, req dto.AddMemberRequest) (*domain.EOTeamMember, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, notFound(err)
	}

	eo, err := s.team.FindEOByID(ctx, auth.EOID)
	if err != nil {
		return nil, notFound(err)
	}
	if eo.OwnerID == user.ID {
		return nil, ErrOwnerImmutable
	}

	eventIDs := uniqueIDs(req.EventIDs)
	if req.Role == domain.TeamRoleScanner {
		if err := s.ensureOwnedEvents(ctx, auth.EOID, eventIDs); err != nil {
			return nil, err
		}
	} else if len(eventIDs) > 0 {
		return nil, invalid("eventIds", "only scanners have an event allow-list")
	}

	if err := s.ensureNoOtherEO(ctx, auth.EOID, user.ID); err != nil {
		return nil, err
	}

	m := &domain.EOTeamMember{EOID: auth.EOID, UserID: user.ID, Role: req.Role}
	if err := s.team.AddMember(ctx, m, eventIDs); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrMemberExists
		}
		return nil, err
	}

	s.log.Info("team member added",
		zap.Uint("eo_id", auth.EOID),
		zap.Uint("user_id", user.ID),
		zap.String("role", string(req.Role)),
	)
	return s.team.FindMemberByID(ctx, auth.EOID, m.ID)
}

// SetEvents replaces a scanner's allow-list. An empty list lifts the restriction.
func (s *teamService) SetEvents(ctx context.Context, auth Authority, memberID uint, eventIDs []uint) (*domain.EOTeamMember, error) {
	if err := auth.requireManage(); err != nil {
		return nil, err
	}
	m, err := s.team.FindMemberByID(ctx, auth.EOID, memberID)
	if err != nil {
		return nil, notFound(err)
	}
	if m.Role != domain.TeamRoleScanner {
		return nil, invalid("eventIds", "only scanners have an event allow-list")
	}

	ids := uniqueIDs(eventIDs)
	if err := s.ensureOwnedEvents(ctx, auth.EOID, ids); err != nil {
		return nil, err
	}
	if err := s.team.ReplaceMemberEvents(ctx, m.ID, ids); err != nil {
		return nil, err
	}
	return s.team.FindMemberByID(ctx, auth.EOID, m.ID)
}

func (s *teamService) Remove(ctx context.Context, auth Authority, memberID uint) error {
	if err := auth.requireManage(); err != nil {
		return err
	}
	m, err := s.team.FindMemberByID(ctx, auth.EOID, memberID)
	if err != nil {
		return notFound(err)
	}
	eo, err := s.team.FindEOByID(ctx, auth.EOID)
	if err != nil {
		return notFound(err)
	}
	if m.UserID == eo.OwnerID {
		return ErrOwnerImmutable
	}

	if err := s.team.RemoveMember(ctx, m.ID); err != nil {
		return notFound(err)
	}
	s.log.Info("team member removed", zap.Uint("eo_id", auth.EOID), zap.Uint("member_id", m.ID))
	return nil
}

// ensureNoOtherEO keeps every identity inside a single EO: an owner or a
// member elsewhere would always resolve to that other EO.
func (s *teamService) ensureNoOtherEO(ctx context.Context, eoID, userID uint) error {
	owned, err := s.team.FindEOByOwner(ctx, userID)
	switch {
	case err == nil:
		if owned.ID != eoID {
			return ErrOtherEO
		}
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	memberships, err := s.team.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.EOID != eoID {
			return ErrOtherEO
		}
	}
	return nil
}

// ensureOwnedEvents rejects ids that are missing or belong to another EO.
func (s *teamService) ensureOwnedEvents(ctx context.Context, eoID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.events.CountOwned(ctx, eoID, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
