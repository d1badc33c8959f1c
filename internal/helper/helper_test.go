package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	require.True(t, IsUniqueViolation(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestNikHelpers(t *testing.T) {
	nik := "3201234567890001"

	require.Equal(t, "3201********0001", MaskNik(nik))
	require.Equal(t, NikFingerprint("pepper", nik), NikFingerprint("pepper", nik))
	require.NotEqual(t, NikFingerprint("pepper", nik), NikFingerprint("other", nik))

	hash, err := HashNik(nik, 4)
	require.NoError(t, err)
	require.True(t, NikMatches(nik, hash))
	require.False(t, NikMatches("3201234567890002", hash))
}
