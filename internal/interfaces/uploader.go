package interfaces

import "context"

// FileStore keeps identity images. Save returns an opaque handle that is
// persisted on the verification row and later passed back to Delete.
type FileStore interface {
	Save(ctx context.Context, folder, contentType string, b []byte) (string, error)
	Delete(ctx context.Context, handle string) error
}
