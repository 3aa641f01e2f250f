package repositories

import (
	"context"

	"washtech-rental/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// notificationRepository implements NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) mine(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(models.Active(models.TableNotifications)).
		Where("user_id = ?", userID)
}

// Create stores one notification
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateBatch stores many notifications in one statement
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, 100).Error
}

// ListByUser lists a user's notifications, newest first
func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	if err := r.mine(ctx, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.mine(ctx, userID).
		Order("sent_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts unread notifications for a user
func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.mine(ctx, userID).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// MarkRead flags one of the user's notifications as read
// MySQL reports zero affected rows for an already-read row, so existence is
// checked separately.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	var count int64
	if err := r.mine(ctx, userID).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	err := r.mine(ctx, userID).Where("id = ?", id).Update("is_read", true).Error
	return err == nil, err
}
