package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"

	CtxCartSessionKey = "cart_session" // string (uuid)
)

// CartSession resolves the anonymous cart session from the header or the
// cookie, issuing a new one when neither carries a valid id. The id is
// echoed back in both.
func CartSession(secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := strings.TrimSpace(c.Request().Header.Get(CartSessionHeader))
			if session == "" {
				if ck, err := c.Cookie(CartSessionCookie); err == nil {
					session = strings.TrimSpace(ck.Value)
				}
			}
			if _, err := uuid.Parse(session); err != nil {
				session = uuid.NewString()
			}

			c.Set(CtxCartSessionKey, session)
			c.Response().Header().Set(CartSessionHeader, session)
			c.SetCookie(&http.Cookie{
				Name:     CartSessionCookie,
				Value:    session,
				Path:     "/",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			return next(c)
		}
	}
}

func CartSessionFromContext(c echo.Context) string {
	v, _ := c.Get(CtxCartSessionKey).(string)
	return v
}
