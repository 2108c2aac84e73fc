package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the name of the session cookie.
const CookieName = "jwt"

// CookieTransport binds session tokens to the jwt cookie.
type CookieTransport struct {
	MaxAge time.Duration
	Secure bool
}

// NewCookieTransport returns a transport whose cookies are Secure everywhere except
// the development environment.
func NewCookieTransport(env string, maxAge time.Duration) CookieTransport {
	return CookieTransport{
		MaxAge: maxAge,
		Secure: env != "development",
	}
}

// Attach sets the session cookie carrying token.
func (t CookieTransport) Attach(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(t.MaxAge/time.Second), "/", "", t.Secure, true)
}

// Clear expires the session cookie on the client.
func (t CookieTransport) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	// a negative max-age is written as Max-Age=0
	c.SetCookie(CookieName, "", -1, "/", "", t.Secure, true)
}

// Read returns the raw session token, if any.
func (t CookieTransport) Read(c *gin.Context) (string, bool) {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}
