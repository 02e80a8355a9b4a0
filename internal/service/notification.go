package service

import (
	"context"

	"github.com/safe2go/helpdesk/internal/domain"
)

const notificationListCap = 50

// NotificationService handles per-user notification feeds
type NotificationService struct {
	notificationRepo NotificationRepositoryInterface
}

func NewNotificationService(notificationRepo NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns the user's notifications, newest first, capped at 50.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, notificationListCap)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
