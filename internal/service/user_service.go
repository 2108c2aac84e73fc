package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"social-app/internal/auth"
	"social-app/internal/domain"
	"social-app/internal/repository"
	"social-app/internal/storage"
)

const (
	minPasswordLength = 6
	suggestionSample  = 10
	suggestionLimit   = 4
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong        = newError(KindInvalidInput, "Password must be at most 72 bytes long")
	// ErrRegistrationIncomplete is returned when a required registration field is blank.
	ErrRegistrationIncomplete = newError(KindInvalidInput, "Username, fullname, email and password are required")
)

type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries a partial profile update; empty fields are left unchanged.
type UpdateProfileInput struct {
	Username        string
	FullName        string
	Email           string
	Bio             string
	Link            string
	CurrentPassword string
	NewPassword     string
	ProfilePicture  string
	CoverPicture    string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetProfile(ctx context.Context, username string) (*domain.User, error)
	Suggested(ctx context.Context, userID string) ([]domain.User, error)
	ToggleFollow(ctx context.Context, userID, targetID string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
}

type userService struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	media         storage.Service
	logger        *logrus.Logger
}

func NewUserService(users repository.UserRepository, notifications repository.NotificationRepository, media storage.Service, logger *logrus.Logger) UserService {
	if logger == nil {
		logger = logrus.New()
	}
	return &userService{
		users:         users,
		notifications: notifications,
		media:         media,
		logger:        logger,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || strings.TrimSpace(in.FullName) == "" || email == "" || in.Password == "" {
		return nil, ErrRegistrationIncomplete
	}

	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := s.ensureFree(ctx, s.users.GetByUsername, username, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.users.GetByEmail, email, ErrEmailTaken); err != nil {
		return nil, err
	}
	if passwordLength(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
	}
	// the unique indices settle races the lookups above cannot
	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflictError(err)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	user, err := s.users.FindByUsernameOrEmail(ctx, strings.TrimSpace(in.Username), strings.TrimSpace(in.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	digest := ""
	if user != nil {
		digest = user.PasswordHash
	}
	// always verify so a missing account takes the same path as a wrong password
	matched := auth.VerifyPassword(in.Password, digest)
	if user == nil || !matched {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Suggested(ctx context.Context, userID string) ([]domain.User, error) {
	me, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	sample, err := s.users.Sample(ctx, userID, suggestionSample)
	if err != nil {
		return nil, err
	}

	suggested := make([]domain.User, 0, suggestionLimit)
	for i := range sample {
		if me.IsFollowing(sample[i].ID) {
			continue
		}
		suggested = append(suggested, *sanitizeUser(&sample[i]))
		if len(suggested) == suggestionLimit {
			break
		}
	}
	return suggested, nil
}

func (s *userService) ToggleFollow(ctx context.Context, userID, targetID string) (bool, error) {
	if userID == targetID {
		return false, ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, notFound(err, ErrUserNotFound)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return false, notFound(err, ErrUserNotFound)
	}

	following, err := s.users.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	if following {
		if err := s.notifications.Create(ctx, &domain.Notification{
			FromID: userID,
			ToID:   targetID,
			Type:   domain.NotificationFollow,
		}); err != nil {
			return true, err
		}
	}
	return following, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, ErrPasswordPairRequired
	}
	if in.CurrentPassword != "" {
		if !auth.VerifyPassword(in.CurrentPassword, user.PasswordHash) {
			return nil, ErrCurrentPasswordWrong
		}
		if passwordLength(in.NewPassword) < minPasswordLength {
			return nil, ErrNewPasswordTooShort
		}
		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if email := strings.TrimSpace(in.Email); email != "" {
		if !emailPattern.MatchString(email) {
			return nil, ErrInvalidEmail
		}
		user.Email = email
	}
	if username := strings.TrimSpace(in.Username); username != "" {
		user.Username = username
	}
	if fullName := strings.TrimSpace(in.FullName); fullName != "" {
		user.FullName = fullName
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Link != "" {
		user.Link = in.Link
	}

	var uploaded, replaced []string
	swap := func(field **string, payload string) error {
		if payload == "" {
			return nil
		}
		url, err := uploadImage(ctx, s.media, payload)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, url)
		if *field != nil {
			replaced = append(replaced, **field)
		}
		*field = &url
		return nil
	}
	if err := swap(&user.ProfilePicture, in.ProfilePicture); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	if err := swap(&user.CoverPicture, in.CoverPicture); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.discard(ctx, uploaded)
		return nil, conflictError(err)
	}
	s.discard(ctx, replaced)

	return sanitizeUser(user), nil
}

// discard destroys images that are no longer referenced. Failures only leave an
// orphaned object behind, so they are logged and swallowed.
func (s *userService) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.media.DeleteImage(ctx, url); err != nil {
			s.logger.WithError(err).WithField("url", url).Warn("destroy image")
		}
	}
}

func (s *userService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), value string, taken *Error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
}

// passwordLength counts UTF-16 code units, the unit browsers use for password length.
func passwordLength(s string) int {
	n := 0
	for _, r := range s {
		if size := utf16.RuneLen(r); size > 0 {
			n += size
		} else {
			n++
		}
	}
	return n
}

func hashPassword(plaintext string) (string, error) {
	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return hash, nil
}

func conflictError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	}
	return err
}

func notFound(err error, mapped *Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return mapped
	}
	return err
}

func uploadImage(ctx context.Context, media storage.Service, payload string) (string, error) {
	url, err := media.UploadImage(ctx, payload)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, storage.ErrInvalidImage):
		return "", ErrInvalidImage
	case errors.Is(err, storage.ErrNotConfigured):
		return "", ErrUploadsDisabled
	}
	return "", fmt.Errorf("upload image: %w", err)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
