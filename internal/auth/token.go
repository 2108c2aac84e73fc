package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid. Token timestamps have
// whole-second precision, so a token issued mid-second expires at the start of the
// second it would otherwise end in.
const SessionTTL = 15 * 24 * time.Hour

var (
	// ErrInvalidToken is the single outcome callers see for any token that does not verify.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the session token payload.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256-signed session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// WithTTL overrides SessionTTL.
func WithTTL(ttl time.Duration) TokenOption {
	return func(c *TokenCodec) { c.ttl = ttl }
}

func NewTokenCodec(secret string, opts ...TokenOption) *TokenCodec {
	c := &TokenCodec{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue returns a signed token for userID that expires TTL from now.
func (c *TokenCodec) Issue(userID string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the encoded user id. Every failure
// wraps ErrInvalidToken; the wrapped reason is only meant for logs.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrTokenSignature
	default:
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenMalformed
	}
	return claims.UserID, nil
}
