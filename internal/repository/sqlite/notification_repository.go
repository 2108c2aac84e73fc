package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"social-app/internal/domain"
	"social-app/internal/repository"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO notifications (id, from_id, to_id, type, read, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.FromID,
		n.ToID,
		string(n.Type),
		n.Read,
		n.CreatedAt,
		n.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, from_id, to_id, type, read, created_at, updated_at
FROM notifications
WHERE id=?`, id)
	return scanNotification(row)
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, from_id, to_id, type, read, created_at, updated_at
FROM notifications
WHERE to_id=?
ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE notifications
SET read=1, updated_at=?
WHERE to_id=? AND read=0`, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE to_id=?`, userID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func scanNotification(row scanner) (*domain.Notification, error) {
	var (
		n   domain.Notification
		typ string
	)
	if err := row.Scan(&n.ID, &n.FromID, &n.ToID, &typ, &n.Read, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}
