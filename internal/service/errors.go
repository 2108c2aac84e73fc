package service

// Kind classifies a failure the client is allowed to see.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
)

// Error is a client-facing failure with a message safe to return verbatim.
// Any other error returned by a service is internal.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrInvalidEmail         = newError(KindInvalidInput, "Invalid email address")
	ErrUsernameTaken        = newError(KindConflict, "Username already exists")
	ErrEmailTaken           = newError(KindConflict, "Email already exists")
	ErrPasswordTooShort     = newError(KindInvalidInput, "Password must be at least 6 characters long")
	ErrInvalidCredentials   = newError(KindUnauthorized, "Invalid email or password")
	ErrUserNotFound         = newError(KindNotFound, "User not found")
	ErrSelfFollow           = newError(KindInvalidInput, "You cannot follow/unfollow yourself")
	ErrPasswordPairRequired = newError(KindInvalidInput, "Current password or new password is required")
	ErrCurrentPasswordWrong = newError(KindInvalidInput, "Current password is incorrect")
	ErrNewPasswordTooShort  = newError(KindInvalidInput, "New password must be at least 6 characters long")
	ErrInvalidImage         = newError(KindInvalidInput, "Invalid image")
	ErrUploadsDisabled      = newError(KindInvalidInput, "Image uploads are not configured")
	ErrPostContentRequired  = newError(KindInvalidInput, "Text or Image is required")
	ErrPostNotFound         = newError(KindNotFound, "Post not found")
	ErrPostNotOwned         = newError(KindForbidden, "Unauthorized to delete this post")
	ErrCommentTextRequired  = newError(KindInvalidInput, "Comment text is required")
	ErrNotificationNotFound = newError(KindNotFound, "Notification not found")
	ErrNotificationNotOwned = newError(KindForbidden, "Unauthorized")
)
