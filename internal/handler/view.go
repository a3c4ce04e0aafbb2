package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Home backs the landing page. It sits behind the soft IsLoggedIn
// middleware: a valid session shows the visitor their account, anything
// else renders the anonymous view instead of failing.
func Home(c echo.Context) error {
	if u := mustCurrentUser(c); u != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"user": u.Public()}})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"user": nil}})
}
