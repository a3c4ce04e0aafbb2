package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// AdminGetUser looks up any user by ID. The route is restricted to the
// admin role via middleware; the handler itself only does the lookup.
func (h *AuthHandler) AdminGetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return jsonError(c, http.StatusBadRequest, "Invalid user ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, "No user found with that ID")
		}
		return jsonError(c, http.StatusInternalServerError, "Could not load the user. Please try again.")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"user": u.Public()}})
}
