package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/helper"
	"github.com/SundayYogurt/eventhub_service/internal/interfaces"
	"github.com/SundayYogurt/eventhub_service/internal/repository"
	"github.com/SundayYogurt/eventhub_service/pkg/utils"
	"go.uber.org/zap"
)

const (
	ktpFolder    = "ktp"
	selfieFolder = "selfie"

	imageMaxWidth = 1600
	jpgQuality    = 85
)

type VerificationService interface {
	// Applicant
	Apply(ctx context.Context, userID uint, form dto.EOApplyForm, files dto.EOFiles) (*domain.EoVerification, error)
	Update(ctx context.Context, userID uint, form dto.EOUpdateForm, files dto.EOFiles) (*domain.EoVerification, error)
	Status(ctx context.Context, userID uint) (*domain.EoVerification, error)

	// Admin
	Approve(ctx context.Context, admin helper.Identity, verificationID uint) (*dto.ApproveResponse, error)
	Reject(ctx context.Context, admin helper.Identity, verificationID uint, reason string) (*domain.EoVerification, error)
	ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.EoVerification, error)
	ListApproved(ctx context.Context, limit, offset int) ([]domain.EO, error)
	Detail(ctx context.Context, verificationID uint) (*domain.EoVerification, error)
}

type VerificationConfig struct {
	NikPepper      string
	BcryptCost     int
	MaxUploadBytes int64
}

type verificationService struct {
	repo     repository.VerificationRepository
	teamRepo repository.TeamRepository
	store    interfaces.FileStore
	producer interfaces.ProducerHandler
	log      *zap.Logger
	cfg      VerificationConfig
}

func NewVerificationService(
	repo repository.VerificationRepository,
	teamRepo repository.TeamRepository,
	store interfaces.FileStore,
	producer interfaces.ProducerHandler,
	log *zap.Logger,
	cfg VerificationConfig,
) VerificationService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 2 * 1024 * 1024
	}
	return &verificationService{
		repo:     repo,
		teamRepo: teamRepo,
		store:    store,
		producer: producer,
		log:      log,
		cfg:      cfg,
	}
}

/* =========================
   APPLICANT
========================= */

func (s *verificationService) Apply(ctx context.Context, userID uint, form dto.EOApplyForm, files dto.EOFiles) (*domain.EoVerification, error) {
	form = trimApplyForm(form)

	// 1) validate everything before touching storage
	verr := &ValidationError{Fields: map[string]string{}}
	mergeValidation(verr, validateStruct(&form))
	ktpType := s.checkImage(verr, "ktpImage", files.Ktp, true)
	selfieType := s.checkImage(verr, "selfieImage", files.Selfie, true)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	// 2) lifecycle
	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := applyBlockedBy(existing.Status); err != nil {
			return nil, err
		}
	}

	// 3) early NIK check, the unique fingerprint settles races
	if err := s.ensureNikUnique(ctx, userID, form.Nik); err != nil {
		return nil, err
	}

	// 4) store the new images; released on every failure below
	uploads := newUploadSet(s.store, s.log)
	defer uploads.release(ctx)

	ktp, err := s.storeImage(ctx, uploads, ktpFolder, "ktpImage", files.Ktp, ktpType)
	if err != nil {
		return nil, err
	}
	selfie, err := s.storeImage(ctx, uploads, selfieFolder, "selfieImage", files.Selfie, selfieType)
	if err != nil {
		return nil, err
	}

	v := &domain.EoVerification{UserID: userID}
	var oldImages []string
	if existing != nil {
		v = existing
		oldImages = []string{existing.KtpImage, existing.SelfieImage}
	}
	v.FullName = form.FullName
	v.Phone = form.Phone
	v.Address = form.Address
	v.KtpImage = ktp
	v.SelfieImage = selfie
	if err := s.setNik(v, form.Nik); err != nil {
		return nil, err
	}

	// 5) persist
	if existing != nil {
		err = s.repo.Resubmit(ctx, v)
	} else {
		err = s.repo.Create(ctx, v)
	}
	if err != nil {
		return nil, s.persistError(ctx, userID, v.NikFingerprint, err)
	}

	// 6) new files are referenced; old ones can go
	uploads.commit()
	removeFiles(context.WithoutCancel(ctx), s.store, s.log, oldImages...)

	verificationDecisions.WithLabelValues(string(domain.VerificationPending)).Inc()
	s.log.Info("eo application submitted", zap.Uint("user_id", userID), zap.Uint("verification_id", v.ID))
	return v, nil
}

func (s *verificationService) Update(ctx context.Context, userID uint, form dto.EOUpdateForm, files dto.EOFiles) (*domain.EoVerification, error) {
	existing, err := s.repo.FindByUserID(ctx, userID)
	// nothing on record is not a rejected application either
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotEditable
	}
	if err != nil {
		return nil, err
	}
	if existing.Status != domain.VerificationRejected {
		return nil, ErrNotEditable
	}

	// merge, then validate only what changed
	merged := dto.EOApplyForm{FullName: existing.FullName, Phone: existing.Phone, Address: existing.Address}
	var changed []string
	if form.FullName != nil {
		merged.FullName = strings.TrimSpace(*form.FullName)
		changed = append(changed, "FullName")
	}
	if form.Nik != nil {
		merged.Nik = strings.TrimSpace(*form.Nik)
		changed = append(changed, "Nik")
	}
	if form.Phone != nil {
		merged.Phone = strings.TrimSpace(*form.Phone)
		changed = append(changed, "Phone")
	}
	if form.Address != nil {
		merged.Address = strings.TrimSpace(*form.Address)
		changed = append(changed, "Address")
	}

	verr := &ValidationError{Fields: map[string]string{}}
	mergeValidation(verr, validatePartial(&merged, changed...))
	ktpType := s.checkImage(verr, "ktpImage", files.Ktp, false)
	selfieType := s.checkImage(verr, "selfieImage", files.Selfie, false)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if form.Nik != nil {
		if err := s.ensureNikUnique(ctx, userID, merged.Nik); err != nil {
			return nil, err
		}
	}

	uploads := newUploadSet(s.store, s.log)
	defer uploads.release(ctx)

	v := *existing
	var replaced []string
	if files.Ktp != nil {
		h, err := s.storeImage(ctx, uploads, ktpFolder, "ktpImage", files.Ktp, ktpType)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, existing.KtpImage)
		v.KtpImage = h
	}
	if files.Selfie != nil {
		h, err := s.storeImage(ctx, uploads, selfieFolder, "selfieImage", files.Selfie, selfieType)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, existing.SelfieImage)
		v.SelfieImage = h
	}

	v.FullName = merged.FullName
	v.Phone = merged.Phone
	v.Address = merged.Address
	if form.Nik != nil {
		if err := s.setNik(&v, merged.Nik); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Resubmit(ctx, &v); err != nil {
		return nil, s.persistError(ctx, userID, v.NikFingerprint, err)
	}

	uploads.commit()
	removeFiles(context.WithoutCancel(ctx), s.store, s.log, replaced...)

	verificationDecisions.WithLabelValues(string(domain.VerificationPending)).Inc()
	return &v, nil
}

func (s *verificationService) Status(ctx context.Context, userID uint) (*domain.EoVerification, error) {
	v, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotApplied
	}
	return v, err
}

/* =========================
   ADMIN
========================= */

func (s *verificationService) Approve(ctx context.Context, admin helper.Identity, verificationID uint) (*dto.ApproveResponse, error) {
	v, err := s.findVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if err := approveBlockedBy(v.Status); err != nil {
		return nil, err
	}

	eo, err := s.repo.Approve(ctx, verificationID, admin.ID)
	switch {
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrDuplicate):
		// lost a race with another decision; report what won
		if cur, ferr := s.findVerification(ctx, verificationID); ferr == nil {
			if berr := approveBlockedBy(cur.Status); berr != nil {
				return nil, berr
			}
		}
		return nil, ErrAlreadyApproved
	case err != nil:
		return nil, err
	}

	v, err = s.findVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}

	verificationDecisions.WithLabelValues(string(domain.VerificationApproved)).Inc()
	s.log.Info("eo application approved",
		zap.Uint("verification_id", verificationID),
		zap.Uint("eo_id", eo.ID),
		zap.Uint("admin_id", admin.ID),
	)

	ev := dto.EOEvent{Type: dto.EventEOApproved, VerificationID: v.ID, UserID: v.UserID, Name: v.FullName, EOID: eo.ID}
	if v.User != nil {
		ev.Email = v.User.Email
	}
	publishEvent(ctx, s.producer, s.log, ev)

	return &dto.ApproveResponse{Verification: v, EO: eo}, nil
}

func (s *verificationService) Reject(ctx context.Context, admin helper.Identity, verificationID uint, reason string) (*domain.EoVerification, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	v, err := s.findVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if err := rejectBlockedBy(v.Status); err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]any{
		"actor_email":     admin.Email,
		"previous_status": v.Status,
		"at":              time.Now().UTC().Format(time.RFC3339),
	})
	audit := domain.EoAuditLog{
		ActorID:   admin.ID,
		ActorRole: admin.Role,
		Note:      &reason,
		Meta:      string(meta),
	}

	if err := s.repo.Reject(ctx, verificationID, admin.ID, reason, audit); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			if cur, ferr := s.findVerification(ctx, verificationID); ferr == nil {
				if berr := rejectBlockedBy(cur.Status); berr != nil {
					return nil, berr
				}
			}
			return nil, ErrAlreadyRejected
		}
		return nil, err
	}

	v, err = s.findVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}

	verificationDecisions.WithLabelValues(string(domain.VerificationRejected)).Inc()
	s.log.Info("eo application rejected", zap.Uint("verification_id", verificationID), zap.Uint("admin_id", admin.ID))

	ev := dto.EOEvent{Type: dto.EventEORejected, VerificationID: v.ID, UserID: v.UserID, Name: v.FullName, Reason: reason}
	if v.User != nil {
		ev.Email = v.User.Email
	}
	publishEvent(ctx, s.producer, s.log, ev)

	return v, nil
}

func (s *verificationService) ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.EoVerification, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

func (s *verificationService) ListApproved(ctx context.Context, limit, offset int) ([]domain.EO, error) {
	limit, offset = clampPage(limit, offset)
	return s.teamRepo.ListEOs(ctx, limit, offset)
}

func (s *verificationService) Detail(ctx context.Context, verificationID uint) (*domain.EoVerification, error) {
	return s.findVerification(ctx, verificationID)
}

/* =========================
   helpers
========================= */

func applyBlockedBy(status domain.VerificationStatus) error {
	switch status {
	case domain.VerificationPending:
		return ErrAlreadyPending
	case domain.VerificationApproved:
		return ErrAlreadyApproved
	}
	return nil
}

func approveBlockedBy(status domain.VerificationStatus) error {
	switch status {
	case domain.VerificationApproved:
		return ErrAlreadyApproved
	case domain.VerificationRejected:
		return ErrNotPending
	}
	return nil
}

func rejectBlockedBy(status domain.VerificationStatus) error {
	switch status {
	case domain.VerificationRejected:
		return ErrAlreadyRejected
	case domain.VerificationApproved:
		return ErrAlreadyApproved
	}
	return nil
}

func (s *verificationService) findVerification(ctx context.Context, id uint) (*domain.EoVerification, error) {
	v, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

// ensureNikUnique compares against every other applicant's bcrypt hash.
func (s *verificationService) ensureNikUnique(ctx context.Context, userID uint, nik string) error {
	rows, err := s.repo.ListNikHashes(ctx, userID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if helper.NikMatches(nik, row.NikHash) {
			return ErrNikDuplicate
		}
	}
	return nil
}

func (s *verificationService) setNik(v *domain.EoVerification, nik string) error {
	hash, err := helper.HashNik(nik, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	v.NikHash = hash
	v.NikFingerprint = helper.NikFingerprint(s.cfg.NikPepper, nik)
	v.NikMasked = helper.MaskNik(nik)
	return nil
}

// persistError maps a failed write to the lifecycle error the caller should see.
func (s *verificationService) persistError(ctx context.Context, userID uint, fingerprint string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		taken, ferr := s.repo.FingerprintTaken(ctx, fingerprint, userID)
		if ferr == nil && taken {
			return ErrNikDuplicate
		}
		return ErrAlreadyPending
	case errors.Is(err, repository.ErrConflict):
		if cur, ferr := s.repo.FindByUserID(ctx, userID); ferr == nil {
			if berr := applyBlockedBy(cur.Status); berr != nil {
				return berr
			}
		}
		return ErrAlreadyPending
	default:
		return err
	}
}

// checkImage validates size and type, recording problems on verr.
// It returns the sniffed content type.
func (s *verificationService) checkImage(verr *ValidationError, field string, f *dto.ImageFile, required bool) string {
	if f == nil || len(f.Bytes) == 0 {
		if required || f != nil {
			verr.Fields[field] = "is required"
		}
		return ""
	}
	if int64(len(f.Bytes)) > s.cfg.MaxUploadBytes {
		verr.Fields[field] = "must be at most 2MB"
		return ""
	}
	ct, err := utils.SniffImage(f.Bytes)
	if err != nil {
		verr.Fields[field] = "must be a JPEG or PNG image"
		return ""
	}
	return ct
}

func (s *verificationService) storeImage(ctx context.Context, uploads *uploadSet, folder, field string, f *dto.ImageFile, contentType string) (string, error) {
	normalized, ct, err := utils.NormalizeImage(f.Bytes, imageMaxWidth, jpgQuality)
	if err != nil {
		return "", invalid(field, "must be a readable JPEG or PNG image")
	}
	if ct != contentType {
		return "", invalid(field, "must be a JPEG or PNG image")
	}
	return uploads.save(ctx, folder, ct, normalized)
}

func trimApplyForm(f dto.EOApplyForm) dto.EOApplyForm {
	return dto.EOApplyForm{
		FullName: strings.TrimSpace(f.FullName),
		Nik:      strings.TrimSpace(f.Nik),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  strings.TrimSpace(f.Address),
	}
}

func mergeValidation(dst *ValidationError, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		for k, v := range ve.Fields {
			dst.Fields[k] = v
		}
	}
}
