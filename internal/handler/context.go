package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tourhive/tour-booking-auth/internal/middleware"
	"github.com/tourhive/tour-booking-auth/internal/model"
)

// mustCurrentUser returns the user resolved by the Protect middleware, or
// nil when the route was wired without it.
func mustCurrentUser(c echo.Context) *model.User {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return u
}
