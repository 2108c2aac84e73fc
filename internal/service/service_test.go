package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-app/internal/auth"
	"social-app/internal/domain"
	"social-app/internal/repository"
	"social-app/internal/repository/sqlite"
	"social-app/internal/storage"
)

type fakeMedia struct {
	mu       sync.Mutex
	next     int
	stored   map[string]bool
	deleted  []string
	failNext error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{stored: map[string]bool{}}
}

func (m *fakeMedia) UploadImage(_ context.Context, payload string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return "", err
	}
	if payload == "bad" {
		return "", fmt.Errorf("%w: test", storage.ErrInvalidImage)
	}
	m.next++
	url := fmt.Sprintf("https://cdn.test/%d.png", m.next)
	m.stored[url] = true
	return url, nil
}

func (m *fakeMedia) DeleteImage(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	delete(m.stored, url)
	return nil
}

type fixture struct {
	users         UserService
	posts         PostService
	notifications NotificationService
	userRepo      repository.UserRepository
	media         *fakeMedia
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	notificationRepo := sqlite.NewNotificationRepository(db)
	media := newFakeMedia()

	return &fixture{
		users:         NewUserService(userRepo, notificationRepo, media, logger),
		posts:         NewPostService(postRepo, userRepo, notificationRepo, media, logger),
		notifications: NewNotificationService(notificationRepo, userRepo),
		userRepo:      userRepo,
		media:         media,
	}
}

func (f *fixture) register(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Username: username,
		FullName: strings.ToUpper(username),
		Email:    username + "@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

// usernames lists every stored account.
func (f *fixture) usernames(t *testing.T) []string {
	t.Helper()
	all, err := f.userRepo.Sample(context.Background(), "", 1000)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, u := range all {
		names = append(names, u.Username)
	}
	return names
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{Username: "ana", FullName: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana", u.Username)
	assert.Empty(t, u.PasswordHash, "returned identity never carries the hash")
	assert.Nil(t, u.ProfilePicture)
	assert.Empty(t, u.Followers)

	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, auth.VerifyPassword("secret1", stored.PasswordHash))
	assert.False(t, auth.VerifyPassword("secret2", stored.PasswordHash))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana")

	tests := []struct {
		name string
		in   RegisterInput
		want *Error
	}{
		{
			name: "missing fullname",
			in:   RegisterInput{Username: "bob", Email: "bob@x.com", Password: "secret1"},
			want: ErrRegistrationIncomplete,
		},
		{
			name: "bad email",
			in:   RegisterInput{Username: "bob", FullName: "Bob", Email: "bob@x", Password: "secret1"},
			want: ErrInvalidEmail,
		},
		{
			name: "email checked before username",
			in:   RegisterInput{Username: "ana", FullName: "Ana", Email: "not an email", Password: "secret1"},
			want: ErrInvalidEmail,
		},
		{
			name: "duplicate username",
			in:   RegisterInput{Username: "ana", FullName: "Ana", Email: "other@x.com", Password: "secret1"},
			want: ErrUsernameTaken,
		},
		{
			name: "duplicate email",
			in:   RegisterInput{Username: "bob", FullName: "Bob", Email: "ana@x.com", Password: "secret1"},
			want: ErrEmailTaken,
		},
		{
			name: "duplicate reported before short password",
			in:   RegisterInput{Username: "ana", FullName: "Ana", Email: "other@x.com", Password: "123"},
			want: ErrUsernameTaken,
		},
		{
			name: "short password",
			in:   RegisterInput{Username: "bob", FullName: "Bob", Email: "bob@x.com", Password: "12345"},
			want: ErrPasswordTooShort,
		},
		{
			name: "password beyond bcrypt limit",
			in:   RegisterInput{Username: "bob", FullName: "Bob", Email: "bob@x.com", Password: strings.Repeat("p", 73)},
			want: ErrPasswordTooLong,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// racingUsers hides existing records from the fast-path lookups so the insert hits the unique index.
type racingUsers struct {
	repository.UserRepository
}

func (racingUsers) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (racingUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func TestRegister_UniqueIndexIsAuthoritative(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana")

	svc := NewUserService(racingUsers{f.userRepo}, nil, newFakeMedia(), nil)
	_, err := svc.Register(context.Background(), RegisterInput{Username: "ana", FullName: "Ana", Email: "new@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "new", FullName: "New", Email: "ana@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	assert.Equal(t, []string{"ana"}, f.usernames(t))
}

func TestRegister_DuplicateCreatesNoRecord(t *testing.T) {
	f := newFixture(t)
	in := RegisterInput{Username: "ana", FullName: "Ana", Email: "ana@x.com", Password: "secret1"}

	_, err := f.users.Register(context.Background(), in)
	require.NoError(t, err)
	_, err = f.users.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	assert.Equal(t, []string{"ana"}, f.usernames(t))
}

func TestRegister_PasswordLengthInUTF16Units(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// each emoji is a surrogate pair
	_, err := f.users.Register(ctx, RegisterInput{Username: "bob", FullName: "Bob", Email: "bob@x.com", Password: "😀😀"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.users.Register(ctx, RegisterInput{Username: "bob", FullName: "Bob", Email: "bob@x.com", Password: "😀😀😀"})
	require.NoError(t, err)
	_, err = f.users.Login(ctx, LoginInput{Username: "bob", Password: "😀😀😀"})
	assert.NoError(t, err)

	assert.Equal(t, 5, passwordLength("añoño"))
	assert.Equal(t, 6, passwordLength("😀😀😀"))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")

	u, err := f.users.Login(ctx, LoginInput{Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, u.ID)
	assert.Empty(t, u.PasswordHash)

	u, err = f.users.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, u.ID)

	failures := []LoginInput{
		{Username: "ana", Password: "wrong"},
		{Username: "nobody", Password: "secret1"},
		{Email: "nobody@x.com", Password: "secret1"},
		{Password: "secret1"},
		{},
	}
	for _, in := range failures {
		_, err := f.users.Login(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%+v", in)
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	ana := f.register(t, "ana")

	u, err := f.users.GetByID(context.Background(), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Empty(t, u.PasswordHash)

	_, err = f.users.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggleFollowAndSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")
	for _, name := range []string{"cy", "dee", "eve", "fay"} {
		f.register(t, name)
	}

	_, err := f.users.ToggleFollow(ctx, ana.ID, ana.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	_, err = f.users.ToggleFollow(ctx, ana.ID, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	following, err := f.users.ToggleFollow(ctx, ana.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	notes, err := f.notifications.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationFollow, notes[0].Type)
	require.NotNil(t, notes[0].From)
	assert.Equal(t, "ana", notes[0].From.Username)
	assert.False(t, notes[0].Read)

	notes, err = f.notifications.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, notes[0].Read, "listing marks notifications read")

	suggested, err := f.users.Suggested(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, suggested, 4)
	for _, u := range suggested {
		assert.NotEqual(t, ana.ID, u.ID)
		assert.NotEqual(t, bob.ID, u.ID, "already followed users are not suggested")
		assert.Empty(t, u.PasswordHash)
	}

	following, err = f.users.ToggleFollow(ctx, ana.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	f.register(t, "bob")

	_, err := f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{NewPassword: "another1"})
	assert.ErrorIs(t, err, ErrPasswordPairRequired)
	_, err = f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{CurrentPassword: "wrong", NewPassword: "another1"})
	assert.ErrorIs(t, err, ErrCurrentPasswordWrong)
	_, err = f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{CurrentPassword: "secret1", NewPassword: "abc"})
	assert.ErrorIs(t, err, ErrNewPasswordTooShort)
	_, err = f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{Email: "broken"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{Username: "bob"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{ProfilePicture: "bad"})
	assert.ErrorIs(t, err, ErrInvalidImage)

	u, err := f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{
		Bio:             "hi",
		CurrentPassword: "secret1",
		NewPassword:     "another1",
		ProfilePicture:  "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", u.Bio)
	assert.Equal(t, "ANA", u.FullName, "blank fields are left unchanged")
	require.NotNil(t, u.ProfilePicture)
	first := *u.ProfilePicture

	_, err = f.users.Login(ctx, LoginInput{Username: "ana", Password: "another1"})
	require.NoError(t, err)

	u, err = f.users.UpdateProfile(ctx, ana.ID, UpdateProfileInput{ProfilePicture: "data:image/png;base64,BBBB"})
	require.NoError(t, err)
	assert.NotEqual(t, first, *u.ProfilePicture)
	assert.Contains(t, f.media.deleted, first, "replaced picture is destroyed")
}

func TestUpdateProfile_UploadsDisabled(t *testing.T) {
	f := newFixture(t)
	ana := f.register(t, "ana")
	f.media.failNext = storage.ErrNotConfigured

	_, err := f.users.UpdateProfile(context.Background(), ana.ID, UpdateProfileInput{CoverPicture: "AAAA"})
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")

	_, err := f.posts.Create(ctx, ana.ID, CreatePostInput{})
	assert.ErrorIs(t, err, ErrPostContentRequired)

	post, err := f.posts.Create(ctx, ana.ID, CreatePostInput{Text: "hello", Img: "AAAA"})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)
	assert.True(t, strings.HasPrefix(post.Img, "https://cdn.test/"))
	require.NotNil(t, post.Author)
	assert.Equal(t, "ana", post.Author.Username)

	_, err = f.posts.Create(ctx, bob.ID, CreatePostInput{Text: "from bob"})
	require.NoError(t, err)

	likes, err := f.posts.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, likes)

	notes, err := f.notifications.List(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationLike, notes[0].Type)

	liked, err := f.posts.ListLiked(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, post.ID, liked[0].ID)

	comments, err := f.posts.Comment(ctx, bob.ID, post.ID, "nice")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "bob", comments[0].Author.Username)

	_, err = f.posts.Comment(ctx, bob.ID, post.ID, "  ")
	assert.ErrorIs(t, err, ErrCommentTextRequired)
	_, err = f.posts.Comment(ctx, bob.ID, "missing", "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)

	feed, err := f.posts.ListFollowing(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
	_, err = f.users.ToggleFollow(ctx, ana.ID, bob.ID)
	require.NoError(t, err)
	feed, err = f.posts.ListFollowing(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "from bob", feed[0].Text)

	all, err := f.posts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		require.NotNil(t, p.Author)
	}

	count, err := f.posts.CountByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, err = f.posts.CountByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	byAna, err := f.posts.ListByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, byAna, 1)
	require.Len(t, byAna[0].Comments, 1)
	assert.Equal(t, "bob", byAna[0].Comments[0].Author.Username)

	assert.ErrorIs(t, f.posts.Delete(ctx, bob.ID, post.ID), ErrPostNotOwned)
	require.NoError(t, f.posts.Delete(ctx, ana.ID, post.ID))
	assert.Contains(t, f.media.deleted, post.Img)
	assert.ErrorIs(t, f.posts.Delete(ctx, ana.ID, post.ID), ErrPostNotFound)

	likes, err = f.posts.ToggleLike(ctx, bob.ID, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Nil(t, likes)
}

func TestNotifications_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana")
	bob := f.register(t, "bob")

	_, err := f.users.ToggleFollow(ctx, ana.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.users.ToggleFollow(ctx, bob.ID, ana.ID)
	require.NoError(t, err)

	notes, err := f.notifications.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	assert.ErrorIs(t, f.notifications.Delete(ctx, ana.ID, notes[0].ID), ErrNotificationNotOwned)
	assert.ErrorIs(t, f.notifications.Delete(ctx, bob.ID, "missing"), ErrNotificationNotFound)
	require.NoError(t, f.notifications.Delete(ctx, bob.ID, notes[0].ID))

	require.NoError(t, f.notifications.DeleteAll(ctx, ana.ID))
	notes, err = f.notifications.List(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestErrorKinds(t *testing.T) {
	var svcErr *Error
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", ErrPostNotOwned), &svcErr))
	assert.Equal(t, KindForbidden, svcErr.Kind)
	assert.Equal(t, "Unauthorized to delete this post", svcErr.Error())
}
