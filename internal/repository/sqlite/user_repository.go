package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"social-app/internal/domain"
	"social-app/internal/repository"
)

const userColumns = `id, username, email, fullname, password_hash, bio, link, profile_picture, cover_picture, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, fullname, password_hash, bio, link, profile_picture, cover_picture, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Bio,
		user.Link,
		nullString(user.ProfilePicture),
		nullString(user.CoverPicture),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.Followers = []string{}
	user.Following = []string{}
	user.LikedPosts = []string{}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET username=?, email=?, fullname=?, password_hash=?, bio=?, link=?, profile_picture=?, cover_picture=?, updated_at=?
WHERE id=?`,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Bio,
		user.Link,
		nullString(user.ProfilePicture),
		nullString(user.CoverPicture),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE username = ?`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE email = ?`, email)
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	if username == "" && email == "" {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, `WHERE (? <> '' AND username = ?) OR (? <> '' AND email = ?) ORDER BY created_at LIMIT 1`,
		username, username, email, email)
}

func (r *UserRepository) Sample(ctx context.Context, excludeID string, n int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id <> ?
ORDER BY RANDOM()
LIMIT ?`, excludeID, n)
	if err != nil {
		return nil, fmt.Errorf("sample users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		if err := r.loadRelations(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *UserRepository) ToggleFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM follows WHERE follower_id=? AND followee_id=?`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("follow rows affected: %w", err)
	}

	following := removed == 0
	if following {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO follows (follower_id, followee_id, created_at)
VALUES (?, ?, ?)`, followerID, followeeID, time.Now().UTC()); err != nil {
			return false, fmt.Errorf("insert follow: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return following, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, args ...any) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, args...)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) loadRelations(ctx context.Context, user *domain.User) error {
	var err error
	user.Followers, err = queryStrings(ctx, r.db, `SELECT follower_id FROM follows WHERE followee_id=? ORDER BY rowid`, user.ID)
	if err != nil {
		return fmt.Errorf("query followers: %w", err)
	}
	user.Following, err = queryStrings(ctx, r.db, `SELECT followee_id FROM follows WHERE follower_id=? ORDER BY rowid`, user.ID)
	if err != nil {
		return fmt.Errorf("query following: %w", err)
	}
	user.LikedPosts, err = queryStrings(ctx, r.db, `SELECT post_id FROM post_likes WHERE user_id=? ORDER BY rowid`, user.ID)
	if err != nil {
		return fmt.Errorf("query liked posts: %w", err)
	}
	return nil
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user           domain.User
		profilePicture sql.NullString
		coverPicture   sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Bio,
		&user.Link,
		&profilePicture,
		&coverPicture,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if profilePicture.Valid {
		user.ProfilePicture = &profilePicture.String
	}
	if coverPicture.Valid {
		user.CoverPicture = &coverPicture.String
	}
	return &user, nil
}

// uniqueViolation maps a UNIQUE constraint failure on users to the matching sentinel.
func uniqueViolation(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return fmt.Errorf("%w: %v", repository.ErrDuplicateUsername, err)
	case strings.Contains(msg, "users.email"):
		return fmt.Errorf("%w: %v", repository.ErrDuplicateEmail, err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
