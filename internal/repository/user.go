package repository

import (
	"context"
	"errors"

	"social-app/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when an insert or update violates the unique username index.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when an insert or update violates the unique email index.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsernameOrEmail matches a record whose username equals username or whose
	// email equals email. Empty arguments never match.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// Sample returns up to n random users, excluding the user with id excludeID.
	Sample(ctx context.Context, excludeID string, n int) ([]domain.User, error)
	// ToggleFollow follows followeeID if followerID does not follow it yet, otherwise
	// unfollows. It reports whether the follow relation exists afterwards.
	ToggleFollow(ctx context.Context, followerID, followeeID string) (bool, error)
}
