package services

import (
	"context"
	"errors"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
)

type AuthorityKind string

const (
	KindOwner     AuthorityKind = "OWNER"
	KindTeamAdmin AuthorityKind = "TEAM_ADMIN"
	KindScanner   AuthorityKind = "SCANNER"
)

// Authority is what a caller may do inside one EO. It is resolved once per
// request and then matched by every EO-scoped operation.
type Authority struct {
	Kind     AuthorityKind `json:"kind"`
	UserID   uint          `json:"user_id"`
	EOID     uint          `json:"eo_id"`
	MemberID uint          `json:"member_id,omitempty"`
	// EventIDs restricts a scanner; nil means every event of the EO.
	EventIDs []uint `json:"event_ids,omitempty"`
}

func (a Authority) CanManage() bool {
	return a.Kind == KindOwner || a.Kind == KindTeamAdmin
}

func (a Authority) CanScan(eventID uint) bool {
	switch a.Kind {
	case KindOwner, KindTeamAdmin:
		return true
	case KindScanner:
		if a.EventIDs == nil {
			return true
		}
		for _, id := range a.EventIDs {
			if id == eventID {
				return true
			}
		}
	}
	return false
}

// Scope fails with ErrNotFound when the resource lives in another EO, so a
// guessed id looks exactly like a missing one.
func (a Authority) Scope(resourceEOID uint) error {
	if resourceEOID != a.EOID {
		return ErrNotFound
	}
	return nil
}

func (a Authority) requireManage() error {
	if !a.CanManage() {
		return ErrForbidden
	}
	return nil
}

type AccessService interface {
	Resolve(ctx context.Context, id helper.Identity) (Authority, error)
}

type accessService struct {
	team repository.TeamRepository
}

func NewAccessService(team repository.TeamRepository) AccessService {
	return &accessService{team: team}
}

func (s *accessService) Resolve(ctx context.Context, id helper.Identity) (Authority, error) {
	// 1) owner, no team row needed
	eo, err := s.team.FindEOByOwner(ctx, id.ID)
	switch {
	case err == nil:
		return Authority{Kind: KindOwner, UserID: id.ID, EOID: eo.ID}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return Authority{}, err
	}

	memberships, err := s.team.ListMembershipsByUser(ctx, id.ID)
	if err != nil {
		return Authority{}, err
	}

	// 2) an ADMIN row wins over any SCANNER row
	for _, m := range memberships {
		if m.Role == domain.TeamRoleAdmin {
			return Authority{Kind: KindTeamAdmin, UserID: id.ID, EOID: m.EOID, MemberID: m.ID}, nil
		}
	}

	// 3) scanner, optionally narrowed to its allow-list
	for _, m := range memberships {
		if m.Role == domain.TeamRoleScanner {
			return scannerAuthority(id.ID, m), nil
		}
	}

	return Authority{}, ErrForbidden
}

func scannerAuthority(userID uint, m domain.EOTeamMember) Authority {
	a := Authority{Kind: KindScanner, UserID: userID, EOID: m.EOID, MemberID: m.ID}
	if len(m.Events) > 0 {
		a.EventIDs = make([]uint, 0, len(m.Events))
		for _, ev := range m.Events {
			a.EventIDs = append(a.EventIDs, ev.EventID)
		}
	}
	return a
}
