package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"github.com/SundayYogurt/eventhub_service/internal/interfaces"
	"go.uber.org/zap"
)

// publishEvent runs after commit. A broker outage never fails the request.
func publishEvent(ctx context.Context, producer interfaces.ProducerHandler, log *zap.Logger, ev dto.EOEvent) {
	if producer == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()

	b, err := json.Marshal(ev)
	if err != nil {
		log.Error("encode domain event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	key := []byte(strconv.FormatUint(uint64(ev.UserID), 10))
	if err := producer.PublishMessage(context.WithoutCancel(ctx), key, b); err != nil {
		log.Warn("publish domain event failed",
			zap.String("type", ev.Type),
			zap.Uint("verification_id", ev.VerificationID),
			zap.Error(err),
		)
	}
}
