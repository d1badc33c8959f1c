package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUploadFailed = errors.New("failed to upload file")
	ErrDeleteFailed = errors.New("failed to delete file")
)

// LocalStore writes objects under a root directory. Handles are slash
// separated paths relative to that root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(ctx context.Context, folder, contentType string, b []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	handle := path.Join(folder, uuid.NewString()+ContentTypeToExtension(contentType))
	full := s.resolve(handle)

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := os.WriteFile(full, b, 0o640); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return handle, nil
}

func (s *LocalStore) Delete(_ context.Context, handle string) error {
	if strings.TrimSpace(handle) == "" {
		return nil
	}
	if err := os.Remove(s.resolve(handle)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// resolve keeps every handle inside root.
func (s *LocalStore) resolve(handle string) string {
	clean := path.Clean("/" + handle)
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

func ContentTypeToExtension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
