package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestTeamMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, eo := f.organizer(t, "owner@eo.id")
	_, other := f.organizer(t, "other@eo.id")
	x := f.event(t, eo, "X")
	foreign := f.event(t, other, "Foreign")
	f.user(t, "gate@eo.id", domain.RoleUser)
	auth := f.authority(t, owner)

	_, err := f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "gate@eo.id", Role: domain.TeamRoleScanner, EventIDs: []uint{foreign.ID}})
	requireCode(t, err, "NOT_FOUND")

	m, err := f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: " Gate@EO.id ", Role: domain.TeamRoleScanner, EventIDs: []uint{x.ID, x.ID}})
	require.NoError(t, err)
	require.Len(t, m.Events, 1)

	_, err = f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "gate@eo.id", Role: domain.TeamRoleAdmin})
	requireCode(t, err, "MEMBER_EXISTS")

	_, err = f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "owner@eo.id", Role: domain.TeamRoleScanner})
	requireCode(t, err, "OWNER_IMMUTABLE")

	_, err = f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "missing@eo.id", Role: domain.TeamRoleScanner})
	requireCode(t, err, "NOT_FOUND")

	// empty list lifts the restriction
	m, err = f.teamSv.SetEvents(ctx, auth, m.ID, nil)
	require.NoError(t, err)
	require.Empty(t, m.Events)

	members, err := f.teamSv.List(ctx, auth)
	require.NoError(t, err)
	require.Len(t, members, 2)

	ownerRow, err := f.team.FindMember(ctx, eo.ID, owner.ID)
	require.NoError(t, err)
	requireCode(t, f.teamSv.Remove(ctx, auth, ownerRow.ID), "OWNER_IMMUTABLE")

	require.NoError(t, f.teamSv.Remove(ctx, auth, m.ID))
	requireCode(t, f.teamSv.Remove(ctx, auth, m.ID), "NOT_FOUND")
}

func TestTeamRequiresManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, eo := f.organizer(t, "owner@eo.id")
	scanner, row := f.member(t, eo, "gate@eo.id", domain.TeamRoleScanner)
	auth := f.authority(t, scanner)

	_, err := f.teamSv.List(ctx, auth)
	requireCode(t, err, "FORBIDDEN")
	requireCode(t, f.teamSv.Remove(ctx, auth, row.ID), "FORBIDDEN")
}

func TestTeamAddIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, eo := f.organizer(t, "owner@eo.id")
	x := f.event(t, eo, "X")
	y := f.event(t, eo, "Y")
	gate := f.user(t, "gate@eo.id", domain.RoleUser)
	auth := f.authority(t, owner)

	// the allow-list insert fails after the member row was written
	require.NoError(t, f.db.Migrator().DropTable(&domain.EventAccess{}))
	_, err := f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "gate@eo.id", Role: domain.TeamRoleScanner, EventIDs: []uint{x.ID}})
	require.Error(t, err)
	require.NoError(t, repository.Migrate(f.db))

	_, err = f.team.FindMember(ctx, eo.ID, gate.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.access.Resolve(ctx, helper.Identity{ID: gate.ID, Role: gate.Role, Email: gate.Email})
	requireCode(t, err, "FORBIDDEN")

	res, err := f.checkin.Scan(ctx, eo.ID, y.ID, gate.ID, "ANY")
	requireCode(t, err, "FORBIDDEN")
	require.Nil(t, res)

	// retry succeeds and is narrowed to X
	m, err := f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "gate@eo.id", Role: domain.TeamRoleScanner, EventIDs: []uint{x.ID}})
	require.NoError(t, err)
	require.Len(t, m.Events, 1)
	a := f.authority(t, gate)
	require.True(t, a.CanScan(x.ID))
	require.False(t, a.CanScan(y.ID))
}

func TestTeamAddKeepsOneEOPerIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, eo := f.organizer(t, "owner@eo.id")
	_, other := f.organizer(t, "other@eo.id")
	f.member(t, other, "busy@eo.id", domain.TeamRoleScanner)
	auth := f.authority(t, owner)

	_, err := f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "other@eo.id", Role: domain.TeamRoleAdmin})
	requireCode(t, err, "MEMBER_OF_OTHER_EO")

	_, err = f.teamSv.Add(ctx, auth, dto.AddMemberRequest{Email: "busy@eo.id", Role: domain.TeamRoleScanner})
	requireCode(t, err, "MEMBER_OF_OTHER_EO")

	members, err := f.team.ListMembers(ctx, eo.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}
