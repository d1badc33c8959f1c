package services

import (
	"context"

	"github.com/SundayYogurt/eventhub_service/internal/interfaces"
	"go.uber.org/zap"
)

// uploadSet tracks files stored during one request. Unless commit is
// called, release deletes every one of them.
type uploadSet struct {
	store     interfaces.FileStore
	log       *zap.Logger
	handles   []string
	committed bool
}

func newUploadSet(store interfaces.FileStore, log *zap.Logger) *uploadSet {
	return &uploadSet{store: store, log: log}
}

func (u *uploadSet) save(ctx context.Context, folder, contentType string, b []byte) (string, error) {
	h, err := u.store.Save(ctx, folder, contentType, b)
	if err != nil {
		return "", err
	}
	u.handles = append(u.handles, h)
	return h, nil
}

func (u *uploadSet) commit() { u.committed = true }

func (u *uploadSet) release(ctx context.Context) {
	if u.committed {
		return
	}
	removeFiles(context.WithoutCancel(ctx), u.store, u.log, u.handles...)
}

// removeFiles is best effort; a failed delete leaves an orphan, logged for operators.
func removeFiles(ctx context.Context, store interfaces.FileStore, log *zap.Logger, handles ...string) {
	for _, h := range handles {
		if h == "" {
			continue
		}
		if err := store.Delete(ctx, h); err != nil {
			log.Warn("file cleanup failed", zap.String("handle", h), zap.Error(err))
		}
	}
}
