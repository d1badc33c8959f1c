package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Open("sqlite", dsn, true)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: email, Email: email, PasswordHash: "x", Role: domain.RoleUser}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedPending(t *testing.T, db *gorm.DB, userID uint, fingerprint string) *domain.EoVerification {
	t.Helper()
	v := &domain.EoVerification{
		UserID:         userID,
		FullName:       "Budi Santoso",
		NikMasked:      "3201********0001",
		NikHash:        "hash",
		NikFingerprint: fingerprint,
		Phone:          "081234567890",
		Address:        "Jl. Merdeka No. 1, Bandung",
		KtpImage:       "ktp/a.jpg",
		SelfieImage:    "selfie/a.jpg",
		Status:         domain.VerificationPending,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed verification: %v", err)
	}
	return v
}
