package helper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err came from a unique index.
// gorm translates most drivers to ErrDuplicatedKey; raw pg errors are checked too.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func HashNik(nik string, cost int) (string, error) {
	return HashPassword(nik, cost)
}

func NikMatches(nik, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(nik)) == nil
}

// NikFingerprint is a keyed, deterministic digest used only for the unique index.
func NikFingerprint(pepper, nik string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(nik))
	return hex.EncodeToString(mac.Sum(nil))
}

// MaskNik keeps the first and last four digits.
func MaskNik(nik string) string {
	if len(nik) <= 8 {
		return strings.Repeat("*", len(nik))
	}
	return nik[:4] + strings.Repeat("*", len(nik)-8) + nik[len(nik)-4:]
}
