package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/tourhive/tour-booking-auth/internal/handler"
	"github.com/tourhive/tour-booking-auth/internal/middleware"
	"github.com/tourhive/tour-booking-auth/internal/model"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires all auth endpoints and their middleware. The credential
// endpoints (login, forgotPassword) additionally run through the rate
// limiter; the password-management endpoints sit behind Protect; the
// admin lookup adds a role restriction on top.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users middleware.UserLoader, limiter echo.MiddlewareFunc) {
	secret := a.Cfg.JWTSecret

	g := e.Group("/api/v1/users")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login, limiter)
	// The original service exposed logout as GET; both verbs are accepted.
	g.GET("/logout", a.Logout)
	g.POST("/logout", a.Logout)
	g.POST("/forgotPassword", a.ForgotPassword, limiter)
	g.PATCH("/resetPassword/:token", a.ResetPassword)

	// Everything below requires a verified session.
	protected := g.Group("")
	protected.Use(middleware.Protect(secret, users))
	protected.PATCH("/updateMyPassword", a.UpdatePassword)
	protected.GET("/me", a.Me)

	// Admin-only user lookup.
	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.Protect(secret, users))
	admin.Use(middleware.RestrictTo(model.RoleAdmin))
	admin.GET("/users/:id", a.AdminGetUser)

	// Rendered landing page: soft authentication only, never rejects.
	e.GET("/", handler.Home, middleware.IsLoggedIn(secret, users))
}
