package repository

import (
	"context"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	FindByID(ctx context.Context, id uint) (*domain.Event, error)
	// ListByEO returns every live event of the EO, or only those in ids when ids is non-nil.
	ListByEO(ctx context.Context, eoID uint, ids []uint) ([]domain.Event, error)
	CountOwned(ctx context.Context, eoID uint, ids []uint) (int64, error)
	CountByStatus(ctx context.Context, status domain.EventStatus) (int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	SoftDelete(ctx context.Context, id uint) error

	CreateTicketType(ctx context.Context, tt *domain.TicketType) error
	FindTicketType(ctx context.Context, id uint) (*domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID uint) ([]domain.TicketType, error)
	UpdateTicketType(ctx context.Context, id uint, fields map[string]any) error
	DeleteTicketType(ctx context.Context, id uint) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	return translate("create event", r.db.WithContext(ctx).Create(e).Error)
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*domain.Event, error) {
	var e domain.Event
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate("find event", err)
	}
	return &e, nil
}

func (r *eventRepository) ListByEO(ctx context.Context, eoID uint, ids []uint) ([]domain.Event, error) {
	var events []domain.Event
	if ids != nil && len(ids) == 0 {
		return events, nil
	}

	q := r.db.WithContext(ctx).Where("eo_id = ?", eoID)
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, translate("list events", err)
	}
	return events, nil
}

func (r *eventRepository) CountOwned(ctx context.Context, eoID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("eo_id = ? AND id IN ?", eoID, ids).
		Count(&n).Error
	if err != nil {
		return 0, translate("count events", err)
	}
	return n, nil
}

func (r *eventRepository) CountByStatus(ctx context.Context, status domain.EventStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Event{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, translate("count events by status", err)
	}
	return n, nil
}

func (r *eventRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Event{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate("update event", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Event{}, id)
	if res.Error != nil {
		return translate("delete event", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepository) CreateTicketType(ctx context.Context, tt *domain.TicketType) error {
	return translate("create ticket type", r.db.WithContext(ctx).Omit("Event").Create(tt).Error)
}

// FindTicketType loads the owning event too; a soft-deleted event hides its ticket types.
func (r *eventRepository) FindTicketType(ctx context.Context, id uint) (*domain.TicketType, error) {
	var tt domain.TicketType
	if err := r.db.WithContext(ctx).Preload("Event").First(&tt, id).Error; err != nil {
		return nil, translate("find ticket type", err)
	}
	if tt.Event == nil {
		return nil, ErrNotFound
	}
	return &tt, nil
}

func (r *eventRepository) ListTicketTypes(ctx context.Context, eventID uint) ([]domain.TicketType, error) {
	var list []domain.TicketType
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, translate("list ticket types", err)
	}
	return list, nil
}

func (r *eventRepository) UpdateTicketType(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.TicketType{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate("update ticket type", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTicketType refuses with ErrConflict once tickets of the type exist;
// their codes and scan history stay resolvable.
func (r *eventRepository) DeleteTicketType(ctx context.Context, id uint) error {
	return translate("delete ticket type", r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sold int64
		if err := tx.Model(&domain.Ticket{}).Where("ticket_type_id = ?", id).Count(&sold).Error; err != nil {
			return err
		}
		if sold > 0 {
			return ErrConflict
		}

		res := tx.Delete(&domain.TicketType{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
