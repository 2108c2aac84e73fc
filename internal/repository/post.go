package repository

import (
	"context"

	"social-app/internal/domain"
)

// PostRepository exposes persistence operations for posts, likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Post, error)
	ListByAuthors(ctx context.Context, userIDs ...string) ([]domain.Post, error)
	ListByIDs(ctx context.Context, ids ...string) ([]domain.Post, error)
	CountByAuthor(ctx context.Context, userID string) (int, error)
	// ToggleLike likes the post if userID has not liked it yet, otherwise removes the
	// like. It reports whether the like exists afterwards.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, comment *domain.Comment) error
}

// NotificationRepository manages follow/like notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, id string) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID string) error
}
