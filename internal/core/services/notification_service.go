package services

import (
	"context"
	"fmt"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/pagination"
)

// NotificationService reads and acknowledges a user's persisted notifications
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// NotificationList is a page of notifications plus the unread count
type NotificationList struct {
	*pagination.Page[*models.Notification]
	Unread int64 `json:"unread"`
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, params pagination.Params) (*NotificationList, error) {
	items, total, err := s.notificationRepo.ListByUser(ctx, userID, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &NotificationList{
		Page:   pagination.NewPage(items, params, total),
		Unread: unread,
	}, nil
}

// MarkRead flags one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	ok, err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}
