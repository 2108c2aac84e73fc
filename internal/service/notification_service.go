package service

import (
	"context"

	"social-app/internal/domain"
	"social-app/internal/repository"
)

// NotificationService lists and clears a user's notifications.
type NotificationService interface {
	// List returns the user's notifications as they were before the call and then marks them read.
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	DeleteAll(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
}

func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository) NotificationService {
	return &notificationService{
		notifications: notifications,
		users:         users,
	}
}

func (s *notificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	list, err := s.notifications.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	senders := newAuthorCache(s.users)
	for i := range list {
		if list[i].From, err = senders.get(ctx, list[i].FromID); err != nil {
			return nil, err
		}
	}

	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID string) error {
	return s.notifications.DeleteForUser(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return notFound(err, ErrNotificationNotFound)
	}
	if n.ToID != userID {
		return ErrNotificationNotOwned
	}
	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		return notFound(err, ErrNotificationNotFound)
	}
	return nil
}
