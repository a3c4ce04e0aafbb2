package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tourhive/tour-booking-auth/internal/model"
)

// RestrictTo returns middleware that enforces that the authenticated user
// holds one of the given roles. It must run after Protect, which attaches
// the resolved user to the context; a missing user is treated as
// unauthenticated rather than forbidden.
func RestrictTo(roles ...model.Role) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return fail(c, http.StatusUnauthorized, "Please login to get access!")
			}
			if !allowed[u.Role] {
				return fail(c, http.StatusForbidden, "You don't have permission to perform this action.")
			}
			return next(c)
		}
	}
}
