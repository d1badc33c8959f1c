package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPepper = "test-pepper"

// memStore is an in-memory FileStore.
type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saves   int
	failAt  int // fail the n-th Save (1-based); 0 never fails
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) Save(_ context.Context, folder, _ string, b []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failAt > 0 && m.saves == m.failAt {
		return "", fmt.Errorf("store unavailable")
	}
	h := folder + "/" + uuid.NewString()
	m.files[h] = b
	return h, nil
}

func (m *memStore) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, handle)
	m.deleted = append(m.deleted, handle)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func (m *memStore) has(handle string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[handle]
	return ok
}

// recordingProducer keeps every published message.
type recordingProducer struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (p *recordingProducer) PublishMessage(_ context.Context, _, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, value)
	return nil
}

func (p *recordingProducer) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type fixture struct {
	db       *gorm.DB
	store    *memStore
	producer *recordingProducer

	users        repository.UserRepository
	verification repository.VerificationRepository
	team         repository.TeamRepository
	events       repository.EventRepository
	tickets      repository.TicketRepository

	verify  VerificationService
	access  AccessService
	eventSv EventService
	teamSv  TeamService
	checkin CheckInService
	authSv  AuthService
	admin   AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name), true)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	f := &fixture{
		db:           db,
		store:        newMemStore(),
		producer:     &recordingProducer{},
		users:        repository.NewUserRepository(db),
		verification: repository.NewVerificationRepository(db),
		team:         repository.NewTeamRepository(db),
		events:       repository.NewEventRepository(db),
		tickets:      repository.NewTicketRepository(db),
	}

	f.verify = NewVerificationService(f.verification, f.team, f.store, f.producer, log, VerificationConfig{
		NikPepper:      testPepper,
		BcryptCost:     bcrypt.MinCost,
		MaxUploadBytes: 2 * 1024 * 1024,
	})
	f.access = NewAccessService(f.team)
	f.eventSv = NewEventService(f.events, log)
	f.teamSv = NewTeamService(f.team, f.users, f.events, log)
	f.checkin = NewCheckInService(f.team, f.events, f.tickets, log)
	f.authSv = NewAuthService(f.users, f.verification,
		helper.SetupAuth("user-secret", "admin-secret", 7*24*time.Hour, 24*time.Hour), bcrypt.MinCost, log)
	f.admin = NewAdminService(f.users, f.verification, f.events, repository.NewAuditRepository(db), log)
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: "User " + email, Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func adminIdentity(u *domain.User) helper.Identity {
	return helper.Identity{ID: u.ID, Role: domain.RoleAdmin, Email: u.Email}
}

// organizer provisions an approved EO the way Approve does.
func (f *fixture) organizer(t *testing.T, email string) (*domain.User, *domain.EO) {
	t.Helper()
	owner := f.user(t, email, domain.RoleEO)
	eo := &domain.EO{OwnerID: owner.ID, Name: "EO " + email}
	require.NoError(t, f.db.Create(eo).Error)
	require.NoError(t, f.db.Create(&domain.EOTeamMember{EOID: eo.ID, UserID: owner.ID, Role: domain.TeamRoleAdmin}).Error)
	return owner, eo
}

func (f *fixture) member(t *testing.T, eo *domain.EO, email string, role domain.TeamRole, eventIDs ...uint) (*domain.User, *domain.EOTeamMember) {
	t.Helper()
	u := f.user(t, email, domain.RoleUser)
	m := &domain.EOTeamMember{EOID: eo.ID, UserID: u.ID, Role: role}
	require.NoError(t, f.team.AddMember(context.Background(), m, eventIDs))
	return u, m
}

func (f *fixture) event(t *testing.T, eo *domain.EO, title string) *domain.Event {
	t.Helper()
	start := time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC)
	e := &domain.Event{EOID: eo.ID, Title: title, Type: domain.EventOffline, StartDate: start, EndDate: start.Add(3 * time.Hour)}
	require.NoError(t, f.events.Create(context.Background(), e))
	return e
}

func (f *fixture) ticket(t *testing.T, event *domain.Event, code string) *domain.Ticket {
	t.Helper()
	tt := &domain.TicketType{EventID: event.ID, Name: "Regular", Price: 150000, Quota: 100}
	require.NoError(t, f.events.CreateTicketType(context.Background(), tt))
	tk := &domain.Ticket{TicketTypeID: tt.ID, Code: code}
	require.NoError(t, f.tickets.Create(context.Background(), tk))
	return tk
}

func (f *fixture) authority(t *testing.T, u *domain.User) Authority {
	t.Helper()
	a, err := f.access.Resolve(context.Background(), helper.Identity{ID: u.ID, Role: u.Role, Email: u.Email})
	require.NoError(t, err)
	return a
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		img.Set(x, x%24, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func applyForm(nik string) dto.EOApplyForm {
	return dto.EOApplyForm{
		FullName: "Budi Santoso",
		Nik:      nik,
		Phone:    "081234567890",
		Address:  "Jl. Merdeka No. 10, Bandung",
	}
}

func imageFiles(t *testing.T) dto.EOFiles {
	return dto.EOFiles{
		Ktp:    &dto.ImageFile{Filename: "ktp.png", Bytes: pngBytes(t)},
		Selfie: &dto.ImageFile{Filename: "selfie.png", Bytes: pngBytes(t)},
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, Code(err), "error: %v", err)
}
