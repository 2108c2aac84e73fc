package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"social-app/internal/domain"
	"social-app/internal/repository"
	"social-app/internal/storage"
)

type CreatePostInput struct {
	Text string
	// Img is a base64 image payload, uploaded to the media store.
	Img string
}

// PostService coordinates post, like and comment operations.
type PostService interface {
	Create(ctx context.Context, userID string, in CreatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) ([]string, error)
	Comment(ctx context.Context, userID, postID, text string) ([]domain.Comment, error)
	ListAll(ctx context.Context) ([]domain.Post, error)
	ListFollowing(ctx context.Context, userID string) ([]domain.Post, error)
	ListLiked(ctx context.Context, userID string) ([]domain.Post, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Post, error)
	CountByUsername(ctx context.Context, username string) (int, error)
}

type postService struct {
	posts         repository.PostRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	media         storage.Service
	logger        *logrus.Logger
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, notifications repository.NotificationRepository, media storage.Service, logger *logrus.Logger) PostService {
	if logger == nil {
		logger = logrus.New()
	}
	return &postService{
		posts:         posts,
		users:         users,
		notifications: notifications,
		media:         media,
		logger:        logger,
	}
}

func (s *postService) Create(ctx context.Context, userID string, in CreatePostInput) (*domain.Post, error) {
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && in.Img == "" {
		return nil, ErrPostContentRequired
	}

	post := &domain.Post{UserID: userID, Text: text}
	if in.Img != "" {
		url, err := uploadImage(ctx, s.media, in.Img)
		if err != nil {
			return nil, err
		}
		post.Img = url
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.Img != "" {
			s.destroy(ctx, post.Img)
		}
		return nil, err
	}
	post.Author = sanitizeUser(author)
	return post, nil
}

func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return notFound(err, ErrPostNotFound)
	}
	if post.UserID != userID {
		return ErrPostNotOwned
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return notFound(err, ErrPostNotFound)
	}
	if post.Img != "" {
		s.destroy(ctx, post.Img)
	}
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, userID, postID string) ([]string, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}

	liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if liked && post.UserID != userID {
		if err := s.notifications.Create(ctx, &domain.Notification{
			FromID: userID,
			ToID:   post.UserID,
			Type:   domain.NotificationLike,
		}); err != nil {
			return nil, err
		}
	}

	updated, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return updated.Likes, nil
}

func (s *postService) Comment(ctx context.Context, userID, postID, text string) ([]domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}

	if err := s.posts.AddComment(ctx, &domain.Comment{PostID: postID, UserID: userID, Text: text}); err != nil {
		return nil, err
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	comments := post.Comments
	authors := newAuthorCache(s.users)
	for i := range comments {
		if comments[i].Author, err = authors.get(ctx, comments[i].UserID); err != nil {
			return nil, err
		}
	}
	return comments, nil
}

func (s *postService) ListAll(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return posts, s.populate(ctx, posts)
}

func (s *postService) ListFollowing(ctx context.Context, userID string) ([]domain.Post, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	posts, err := s.posts.ListByAuthors(ctx, user.Following...)
	if err != nil {
		return nil, err
	}
	return posts, s.populate(ctx, posts)
}

func (s *postService) ListLiked(ctx context.Context, userID string) ([]domain.Post, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	posts, err := s.posts.ListByIDs(ctx, user.LikedPosts...)
	if err != nil {
		return nil, err
	}
	return posts, s.populate(ctx, posts)
}

func (s *postService) ListByUsername(ctx context.Context, username string) ([]domain.Post, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	posts, err := s.posts.ListByAuthors(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return posts, s.populate(ctx, posts)
}

func (s *postService) CountByUsername(ctx context.Context, username string) (int, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, notFound(err, ErrUserNotFound)
	}
	return s.posts.CountByAuthor(ctx, user.ID)
}

// populate attaches sanitized authors to posts and their comments.
func (s *postService) populate(ctx context.Context, posts []domain.Post) error {
	authors := newAuthorCache(s.users)
	for i := range posts {
		author, err := authors.get(ctx, posts[i].UserID)
		if err != nil {
			return err
		}
		posts[i].Author = author
		for j := range posts[i].Comments {
			if posts[i].Comments[j].Author, err = authors.get(ctx, posts[i].Comments[j].UserID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *postService) destroy(ctx context.Context, url string) {
	if err := s.media.DeleteImage(ctx, url); err != nil {
		s.logger.WithError(err).WithField("url", url).Warn("destroy post image")
	}
}

type authorCache struct {
	users repository.UserRepository
	seen  map[string]*domain.User
}

func newAuthorCache(users repository.UserRepository) *authorCache {
	return &authorCache{users: users, seen: make(map[string]*domain.User)}
}

// get returns the sanitized user, or nil when the account no longer exists.
func (c *authorCache) get(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := c.seen[id]; ok {
		return u, nil
	}
	u, err := c.users.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	c.seen[id] = sanitizeUser(u)
	return c.seen[id], nil
}
