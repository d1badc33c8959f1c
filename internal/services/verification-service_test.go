package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/stretchr/testify/require"
)

func TestApplyApproveAndScanScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, "admin@eventhub.id", domain.RoleAdmin)
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	v, err := f.verify.Apply(ctx, u.ID, applyForm("1234567890123456"), imageFiles(t))
	require.NoError(t, err)
	require.Equal(t, domain.VerificationPending, v.Status)
	require.Equal(t, "1234********3456", v.NikMasked)
	require.NotContains(t, v.NikHash, "1234567890123456")
	require.Equal(t, 2, f.store.count())

	res, err := f.verify.Approve(ctx, adminIdentity(admin), v.ID)
	require.NoError(t, err)
	require.Equal(t, domain.VerificationApproved, res.Verification.Status)
	require.Equal(t, u.ID, res.EO.OwnerID)

	var got domain.User
	require.NoError(t, f.db.First(&got, u.ID).Error)
	require.Equal(t, domain.RoleEO, got.Role)

	m, err := f.team.FindMember(ctx, res.EO.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TeamRoleAdmin, m.Role)
	require.Equal(t, 1, f.producer.published())

	var ev dto.EOEvent
	require.NoError(t, json.Unmarshal(f.producer.msgs[0], &ev))
	require.Equal(t, dto.EventEOApproved, ev.Type)
	require.Equal(t, "u@eventhub.id", ev.Email)

	// gate
	e1 := f.event(t, res.EO, "E1")
	tk := f.ticket(t, e1, "TCK-001")

	first, err := f.checkin.Scan(ctx, res.EO.ID, e1.ID, u.ID, "TCK-001")
	require.NoError(t, err)
	require.True(t, first.Success)
	require.Equal(t, domain.ScanOK, first.Result)

	var used domain.Ticket
	require.NoError(t, f.db.First(&used, tk.ID).Error)
	require.True(t, used.IsUsed)

	second, err := f.checkin.Scan(ctx, res.EO.ID, e1.ID, u.ID, "TCK-001")
	require.NoError(t, err)
	require.False(t, second.Success)
	require.Equal(t, domain.ScanAlreadyUsed, second.Result)
	require.NotNil(t, second.Log)
}

func TestApplyRejectsNikOfAnotherUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.user(t, "a@eventhub.id", domain.RoleUser)
	b := f.user(t, "b@eventhub.id", domain.RoleUser)

	_, err := f.verify.Apply(ctx, a.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)
	require.Equal(t, 2, f.store.count())

	_, err = f.verify.Apply(ctx, b.ID, applyForm("3201010101010001"), imageFiles(t))
	requireCode(t, err, "NIK_DUPLICATE")

	// nothing of b's request is left behind
	require.Equal(t, 2, f.store.count())
	_, err = f.verify.Status(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotApplied)
}

func TestNikFingerprintIsFinalArbiter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.user(t, "a@eventhub.id", domain.RoleUser)
	b := f.user(t, "b@eventhub.id", domain.RoleUser)

	_, err := f.verify.Apply(ctx, a.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)

	// hide the bcrypt hash so only the unique index can catch the duplicate
	require.NoError(t, f.db.Model(&domain.EoVerification{}).Where("user_id = ?", a.ID).Update("nik_hash", "$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva").Error)

	_, err = f.verify.Apply(ctx, b.ID, applyForm("3201010101010001"), imageFiles(t))
	requireCode(t, err, "NIK_DUPLICATE")
	require.Equal(t, 2, f.store.count())
}

func TestResubmitWithOwnNik(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, "admin@eventhub.id", domain.RoleAdmin)
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	v, err := f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)
	oldKtp, oldSelfie := v.KtpImage, v.SelfieImage

	_, err = f.verify.Reject(ctx, adminIdentity(admin), v.ID, "foto KTP buram")
	require.NoError(t, err)

	again, err := f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)
	require.Equal(t, v.ID, again.ID)
	require.Equal(t, domain.VerificationPending, again.Status)
	require.Nil(t, again.Note)

	// old images go once the new ones are referenced
	require.False(t, f.store.has(oldKtp))
	require.False(t, f.store.has(oldSelfie))
	require.True(t, f.store.has(again.KtpImage))
	require.Equal(t, 2, f.store.count())
}

func TestApplyLifecycleGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, "admin@eventhub.id", domain.RoleAdmin)
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	v, err := f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)

	_, err = f.verify.Apply(ctx, u.ID, applyForm("3201010101010002"), imageFiles(t))
	requireCode(t, err, "ALREADY_PENDING")
	require.Equal(t, 2, f.store.count())

	_, err = f.verify.Approve(ctx, adminIdentity(admin), v.ID)
	require.NoError(t, err)

	_, err = f.verify.Apply(ctx, u.ID, applyForm("3201010101010002"), imageFiles(t))
	requireCode(t, err, "ALREADY_APPROVED")

	_, err = f.verify.Approve(ctx, adminIdentity(admin), v.ID)
	requireCode(t, err, "ALREADY_APPROVED")

	_, err = f.verify.Approve(ctx, adminIdentity(admin), 9999)
	requireCode(t, err, "NOT_FOUND")
}

func TestApplyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	form := applyForm("12345")
	form.Phone = "12345"
	files := imageFiles(t)
	files.Selfie = nil

	_, err := f.verify.Apply(ctx, u.ID, form, files)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "nik")
	require.Contains(t, ve.Fields, "phone")
	require.Contains(t, ve.Fields, "selfieImage")

	files = imageFiles(t)
	files.Ktp.Bytes = []byte("%PDF-1.4 not an image")
	_, err = f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), files)
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "ktpImage")

	require.Equal(t, 0, f.store.count())
}

func TestApplyCleansUpWhenSecondUploadFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	f.store.failAt = 2
	_, err := f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), imageFiles(t))
	require.Error(t, err)
	require.Equal(t, 0, f.store.count())
	require.Len(t, f.store.deleted, 1)
}

func TestRejectIsNotReapplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, "admin@eventhub.id", domain.RoleAdmin)
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	v, err := f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)

	_, err = f.verify.Reject(ctx, adminIdentity(admin), v.ID, "   ")
	requireCode(t, err, "REASON_REQUIRED")

	rejected, err := f.verify.Reject(ctx, adminIdentity(admin), v.ID, "selfie tidak jelas")
	require.NoError(t, err)
	require.Equal(t, domain.VerificationRejected, rejected.Status)
	require.Equal(t, "selfie tidak jelas", *rejected.Note)

	_, err = f.verify.Reject(ctx, adminIdentity(admin), v.ID, "another reason")
	requireCode(t, err, "ALREADY_REJECTED")

	after, err := f.verify.Detail(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, "selfie tidak jelas", *after.Note)

	var eoAudits []domain.EoAuditLog
	require.NoError(t, f.db.Where("verification_id = ?", v.ID).Find(&eoAudits).Error)
	require.Len(t, eoAudits, 1)
	require.Equal(t, admin.ID, eoAudits[0].ActorID)
	require.Contains(t, eoAudits[0].Meta, "admin@eventhub.id")

	_, err = f.verify.Reject(ctx, adminIdentity(admin), 9999, "x")
	requireCode(t, err, "NOT_FOUND")
}

func TestUpdateOnlyAfterRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, "admin@eventhub.id", domain.RoleAdmin)
	u := f.user(t, "u@eventhub.id", domain.RoleUser)
	other := f.user(t, "o@eventhub.id", domain.RoleUser)

	phone := "+6281234567891"
	_, err := f.verify.Update(ctx, u.ID, dto.EOUpdateForm{Phone: &phone}, dto.EOFiles{})
	requireCode(t, err, "NOT_EDITABLE")

	v, err := f.verify.Apply(ctx, u.ID, applyForm("3201010101010001"), imageFiles(t))
	require.NoError(t, err)
	_, err = f.verify.Apply(ctx, other.ID, applyForm("3201010101010009"), imageFiles(t))
	require.NoError(t, err)

	_, err = f.verify.Update(ctx, u.ID, dto.EOUpdateForm{Phone: &phone}, dto.EOFiles{})
	requireCode(t, err, "NOT_EDITABLE")

	_, err = f.verify.Reject(ctx, adminIdentity(admin), v.ID, "alamat tidak lengkap")
	require.NoError(t, err)

	taken := "3201010101010009"
	_, err = f.verify.Update(ctx, u.ID, dto.EOUpdateForm{Nik: &taken}, dto.EOFiles{})
	requireCode(t, err, "NIK_DUPLICATE")

	bad := "123"
	_, err = f.verify.Update(ctx, u.ID, dto.EOUpdateForm{Phone: &bad}, dto.EOFiles{})
	requireCode(t, err, "VALIDATION_ERROR")

	files := dto.EOFiles{Selfie: &dto.ImageFile{Filename: "s.png", Bytes: pngBytes(t)}}
	updated, err := f.verify.Update(ctx, u.ID, dto.EOUpdateForm{Phone: &phone}, files)
	require.NoError(t, err)
	require.Equal(t, domain.VerificationPending, updated.Status)
	require.Equal(t, phone, updated.Phone)
	require.Nil(t, updated.Note)
	require.Equal(t, v.KtpImage, updated.KtpImage)
	require.NotEqual(t, v.SelfieImage, updated.SelfieImage)
	require.False(t, f.store.has(v.SelfieImage))
}

func TestStatusNotApplied(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@eventhub.id", domain.RoleUser)

	_, err := f.verify.Status(context.Background(), u.ID)
	requireCode(t, err, "NOT_APPLIED")
}
