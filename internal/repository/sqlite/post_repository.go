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

const postColumns = `id, user_id, text, img, created_at, updated_at`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO posts (id, user_id, text, img, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Text,
		post.Img,
		post.CreatedAt,
		post.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	post.Likes = []string{}
	post.Comments = []domain.Comment{}
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.list(ctx, `ORDER BY created_at DESC, rowid DESC`)
}

func (r *PostRepository) ListByAuthors(ctx context.Context, userIDs ...string) ([]domain.Post, error) {
	if len(userIDs) == 0 {
		return []domain.Post{}, nil
	}
	return r.list(ctx, `WHERE user_id IN (`+placeholders(len(userIDs))+`) ORDER BY created_at DESC, rowid DESC`,
		stringArgs(userIDs)...)
}

func (r *PostRepository) ListByIDs(ctx context.Context, ids ...string) ([]domain.Post, error) {
	if len(ids) == 0 {
		return []domain.Post{}, nil
	}
	return r.list(ctx, `WHERE id IN (`+placeholders(len(ids))+`) ORDER BY created_at DESC, rowid DESC`,
		stringArgs(ids)...)
}

func (r *PostRepository) CountByAuthor(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id=?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id=? AND user_id=?`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("like rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO post_likes (post_id, user_id, created_at)
VALUES (?, ?, ?)`, postID, userID, time.Now().UTC()); err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return liked, nil
}

func (r *PostRepository) AddComment(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO comments (id, post_id, user_id, text, created_at)
VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Text,
		comment.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *PostRepository) list(ctx context.Context, clause string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range posts {
		if err := r.loadRelations(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *PostRepository) loadRelations(ctx context.Context, post *domain.Post) error {
	likes, err := queryStrings(ctx, r.db, `SELECT user_id FROM post_likes WHERE post_id=? ORDER BY rowid`, post.ID)
	if err != nil {
		return fmt.Errorf("query likes: %w", err)
	}
	post.Likes = likes

	rows, err := r.db.QueryContext(ctx, `
SELECT id, post_id, user_id, text, created_at
FROM comments
WHERE post_id=?
ORDER BY created_at ASC, rowid ASC`, post.ID)
	if err != nil {
		return fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	post.Comments = []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		post.Comments = append(post.Comments, c)
	}
	return rows.Err()
}

func scanPost(row scanner) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Text,
		&post.Img,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
