package storage

import (
	"net/http"
	"time"

	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/labstack/echo/v4"
)

// Factory binds session storage to one request.
type Factory interface {
	For(c echo.Context) session.Storage
}

type cookieOptions struct {
	ttl    time.Duration
	secure bool
}

func (o cookieOptions) set(c echo.Context, name, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   o.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o cookieOptions) expire(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
