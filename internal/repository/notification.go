package repository

import (
	"context"

	"vtelltales/internal/cache"
	"vtelltales/internal/models"

	"gorm.io/gorm"
)

// notificationInsertBatchSize bounds the row count per INSERT during fan-out.
const notificationInsertBatchSize = 200

// NotificationRepository stores and reads notification rows.
type NotificationRepository interface {
	// CreateBatch inserts a fan-out batch. Inserts are best-effort: the
	// batch is not wrapped in a caller-visible transaction and a failure
	// reports how many rows made it in.
	CreateBatch(ctx context.Context, notifications []models.Notification) (int64, error)
	// ListAndMarkRead returns the recipient's notifications newest first and
	// flips every unread one to read as part of the same call.
	ListAndMarkRead(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).CreateInBatches(notifications, notificationInsertBatchSize)
	for _, n := range notifications {
		cache.InvalidateUnread(ctx, n.RecipientID)
	}
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) ListAndMarkRead(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Preload("Actor").
			Where("recipient_id = ?", recipientID).
			Order("id DESC").
			Limit(limit).
			Offset(offset).
			Find(&notifications).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).
			Where("recipient_id = ? AND is_read = ?", recipientID, false).
			Update("is_read", true).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateUnread(ctx, recipientID)
	return notifications, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return cache.Aside(ctx, cache.UnreadKey(recipientID), "unread", cache.UnreadTTL, func() (int64, error) {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("recipient_id = ? AND is_read = ?", recipientID, false).
			Count(&count).Error
		return count, err
	})
}
