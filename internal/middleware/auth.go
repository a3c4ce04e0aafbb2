package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tourhive/tour-booking-auth/internal/model"
	"github.com/tourhive/tour-booking-auth/internal/token"
)

// jwtCookieName is the session cookie written by the auth handlers.
const jwtCookieName = "jwt"

// userContextKey is where Protect and IsLoggedIn stash the resolved user.
const userContextKey = "currentUser"

// UserLoader resolves a user ID from a verified session token into a full
// record. Satisfied by *repository.UserRepo; tests substitute a fake.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// CurrentUser returns the user attached to the request by Protect or
// IsLoggedIn, if any.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userContextKey).(*model.User)
	return u, ok
}

// Protect returns middleware that only lets authenticated requests through.
// The session token is read from the Authorization header (Bearer scheme)
// or, failing that, from the session cookie. The token must verify, its
// subject must still exist, and it must not predate the subject's last
// password change. On success the resolved user is attached to the request
// context for downstream handlers.
func Protect(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return fail(c, http.StatusUnauthorized, "Please login to get access!")
			}

			u, msg := resolveUser(c, secret, users, raw)
			if msg != "" {
				return fail(c, http.StatusUnauthorized, msg)
			}

			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// IsLoggedIn is the soft variant of Protect used on rendered pages. It runs
// the same checks but never rejects: any failure is logged and the request
// proceeds anonymously.
func IsLoggedIn(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return next(c)
			}
			u, msg := resolveUser(c, secret, users, raw)
			if msg != "" {
				c.Logger().Debugf("soft auth: %s", msg)
				return next(c)
			}
			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// resolveUser verifies a raw session token and loads its subject. It
// returns a non-empty message describing the failure, or the user on
// success. The message doubles as the 401 response body in Protect.
func resolveUser(c echo.Context, secret string, users UserLoader, raw string) (*model.User, string) {
	userID, issuedAt, err := token.ParseSession(secret, raw)
	if err != nil {
		if err == token.ErrTokenExpired {
			return nil, "Your token has expired! Please log in again."
		}
		return nil, "Invalid token. Please log in again!"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "The user associated with this token no longer exists."
		}
		return nil, "Could not load your account. Please try again."
	}
	if u.ChangedPasswordAfter(issuedAt) {
		return nil, "User recently changed password! Please log in again."
	}
	return &u, ""
}

// extractToken pulls the session token from the Authorization header or the
// session cookie. The header wins when both are present.
func extractToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie(jwtCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}

// fail writes the standard error envelope.
func fail(c echo.Context, code int, msg string) error {
	status := "fail"
	if code >= http.StatusInternalServerError {
		status = "error"
	}
	return c.JSON(code, echo.Map{"status": status, "message": msg})
}
