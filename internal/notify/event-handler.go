package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SundayYogurt/eventhub_service/internal/dto"
	"go.uber.org/zap"
)

// EventHandler consumes EO decision events from the broker.
type EventHandler struct {
	mail *MailService
	log  *zap.Logger
}

func NewEventHandler(mail *MailService, log *zap.Logger) *EventHandler {
	return &EventHandler{mail: mail, log: log}
}

func (h *EventHandler) HandleMessage(ctx context.Context, key, value []byte) error {
	var event dto.EOEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.log.Warn("invalid event payload", zap.ByteString("payload", value))
		return fmt.Errorf("decode event: %w", err)
	}
	if event.Email == "" {
		h.log.Warn("event without recipient", zap.String("type", event.Type), zap.Uint("user_id", event.UserID))
		return nil
	}

	h.log.Info("eo event received",
		zap.String("type", event.Type),
		zap.Uint("verification_id", event.VerificationID),
		zap.Uint("user_id", event.UserID),
	)

	switch event.Type {
	case dto.EventEOApproved:
		return h.mail.SendApproved(ctx, event.Email, event.Name)
	case dto.EventEORejected:
		return h.mail.SendRejected(ctx, event.Email, event.Name, event.Reason)
	default:
		// other event types share the topic
		return nil
	}
}
