package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	require.NoError(t, err)

	handle, err := s.Save(context.Background(), "ktp", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(handle, "ktp/"))
	require.True(t, strings.HasSuffix(handle, ".png"))

	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(handle)))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(b))

	require.NoError(t, s.Delete(context.Background(), handle))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(handle)))
	require.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, s.Delete(context.Background(), handle))
	require.NoError(t, s.Delete(context.Background(), ""))
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(root, "etc", "passwd"), s.resolve("../../etc/passwd"))
}
