package repository

import (
	"context"
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	// FindByCode preloads the ticket type so the caller can see the owning event.
	FindByCode(ctx context.Context, code string) (*domain.Ticket, error)

	// Redeem flips is_used and writes the OK log in one transaction.
	// ErrConflict means another scan got there first and nothing was written.
	Redeem(ctx context.Context, ticketID, eventID, memberID uint) (*domain.ScanLog, error)
	AppendScanLog(ctx context.Context, log *domain.ScanLog) error
	ListScanLogs(ctx context.Context, eventID uint, limit, offset int) ([]domain.ScanLog, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	return translate("create ticket", r.db.WithContext(ctx).Omit("TicketType").Create(t).Error)
}

func (r *ticketRepository) FindByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := r.db.WithContext(ctx).Preload("TicketType").Where("code = ?", code).First(&t).Error; err != nil {
		return nil, translate("find ticket by code", err)
	}
	if t.TicketType == nil {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *ticketRepository) Redeem(ctx context.Context, ticketID, eventID, memberID uint) (*domain.ScanLog, error) {
	var log *domain.ScanLog

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Ticket{}).
			Where("id = ? AND is_used = ?", ticketID, false).
			Updates(map[string]any{
				"is_used": true,
				"used_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		log = &domain.ScanLog{
			EventID:  eventID,
			MemberID: memberID,
			TicketID: ticketID,
			Result:   domain.ScanOK,
		}
		return tx.Create(log).Error
	})
	if err != nil {
		return nil, translate("redeem ticket", err)
	}
	return log, nil
}

func (r *ticketRepository) AppendScanLog(ctx context.Context, log *domain.ScanLog) error {
	return translate("append scan log", r.db.WithContext(ctx).Create(log).Error)
}

func (r *ticketRepository) ListScanLogs(ctx context.Context, eventID uint, limit, offset int) ([]domain.ScanLog, error) {
	var logs []domain.ScanLog
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, translate("list scan logs", err)
	}
	return logs, nil
}
