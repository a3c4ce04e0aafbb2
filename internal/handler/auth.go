package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tourhive/tour-booking-auth/internal/config"
	"github.com/tourhive/tour-booking-auth/internal/email"
	"github.com/tourhive/tour-booking-auth/internal/model"
	"github.com/tourhive/tour-booking-auth/internal/queue"
	"github.com/tourhive/tour-booking-auth/internal/repository"
	"github.com/tourhive/tour-booking-auth/internal/token"
)

// UserStore is the persistence surface the auth endpoints need. Satisfied
// by *repository.UserRepo; tests substitute an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetResetToken(ctx context.Context, id uint64, hash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id uint64) error
	GetByResetToken(ctx context.Context, hash string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// Publisher queues fire-and-forget email work. Publish errors are the
// caller's to drop or surface.
type Publisher interface {
	PublishEmailRequested(ctx context.Context, ev queue.EmailRequestedEvent) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Mail   email.Mailer
	Events Publisher
}

func NewAuthHandler(cfg config.Config, users UserStore, m email.Mailer, ev Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Mail: m, Events: ev}
}

// ----- DTOs -----

type signupReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}
type updatePasswordReq struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Signup creates a user, queues the welcome email, and logs the new user in.
// All signups get the "user" role; elevated roles are assigned out of band.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "Please provide your name, email and password!")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return jsonError(c, http.StatusBadRequest, "Please provide a valid email address")
	}
	if msg := validateNewPassword(req.Password, req.PasswordConfirm); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return jsonError(c, http.StatusBadRequest, "This email is already registered")
		}
		return jsonError(c, http.StatusInternalServerError, "Could not create your account. Please try again.")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not create your account. Please try again.")
	}

	// Welcome mail is fire-and-forget: a publish failure is logged and
	// deliberately dropped so it cannot fail an otherwise-successful signup.
	ev := queue.EmailRequestedEvent{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Template:    string(email.TemplateWelcome),
		URL:         baseURL(c) + "/me",
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.PublishEmailRequested(ctx, ev); err != nil {
		c.Logger().Errorf("welcome email for user_id=%d not queued: %v", u.ID, err)
	}

	return h.sendSession(c, u, http.StatusCreated)
}

// Login verifies credentials and issues a fresh session. Unknown email and
// wrong password produce the same response so accounts cannot be enumerated
// here.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "Please provide email and password!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusUnauthorized, "Incorrect email or password")
		}
		return jsonError(c, http.StatusInternalServerError, "Could not log you in. Please try again.")
	}
	if !token.VerifyPassword(u.PasswordHash, req.Password) {
		return jsonError(c, http.StatusUnauthorized, "Incorrect email or password")
	}

	return h.sendSession(c, u, http.StatusOK)
}

// Logout overwrites the session cookie with a sentinel that expires almost
// immediately. This is not revocation: a bearer token already extracted
// from the header stays valid until its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Path:     "/",
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// ForgotPassword stores a hashed single-use reset token on the user record
// and mails the raw token. If the mail cannot be sent the stored token is
// rolled back before the error surfaces, so no unusable reset state is left
// behind.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return jsonError(c, http.StatusBadRequest, "Please provide your email address!")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			// Distinct status leaks account existence; kept on purpose
			// pending a product decision on the enumeration trade-off.
			return jsonError(c, http.StatusForbidden, "There is no user with this email address.")
		}
		return jsonError(c, http.StatusInternalServerError, "Could not process your request. Please try again.")
	}

	rt, err := token.NewResetToken(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not process your request. Please try again.")
	}
	if err := h.Users.SetResetToken(ctx, u.ID, rt.Hash, rt.Exp); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not process your request. Please try again.")
	}

	resetURL := baseURL(c) + "/api/v1/users/resetPassword/" + rt.Raw
	if err := h.Mail.Send(u.Email, email.TemplatePasswordReset, email.Data{Name: firstName(u.Name), URL: resetURL}); err != nil {
		c.Logger().Errorf("reset email for user_id=%d failed: %v", u.ID, err)
		// Roll back so the failed attempt leaves no pending reset state.
		if clearErr := h.Users.ClearResetToken(ctx, u.ID); clearErr != nil {
			c.Logger().Errorf("reset token rollback for user_id=%d failed: %v", u.ID, clearErr)
		}
		return jsonError(c, http.StatusInternalServerError, "There was an error sending the email. Try again later!")
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Token sent to email!"})
}

// ResetPassword redeems a reset token: the presented raw value is hashed and
// matched against a stored, unexpired digest. On success the password is
// replaced, the reset fields are cleared, and the user is logged in with a
// fresh session.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	rawToken := c.Param("token")
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if msg := validateNewPassword(req.Password, req.PasswordConfirm); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, token.HashResetRaw(rawToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusBadRequest, "Token is invalid or has expired")
		}
		return jsonError(c, http.StatusInternalServerError, "Could not reset your password. Please try again.")
	}

	if err := h.Users.UpdatePassword(ctx, u.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not reset your password. Please try again.")
	}
	if err := h.Users.ClearResetToken(ctx, u.ID); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not reset your password. Please try again.")
	}

	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not reset your password. Please try again.")
	}
	return h.sendSession(c, fresh, http.StatusOK)
}

// UpdatePassword changes the password of the authenticated user after
// re-checking the current one, then issues a fresh session so the client is
// not logged out by its own change.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	u := mustCurrentUser(c)
	if u == nil {
		return jsonError(c, http.StatusUnauthorized, "Please login to get access!")
	}

	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.PasswordCurrent == "" {
		return jsonError(c, http.StatusBadRequest, "Please provide your current password!")
	}
	if msg := validateNewPassword(req.Password, req.PasswordConfirm); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Re-read the record: the context copy may be stale and the hash check
	// must run against what is stored right now.
	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not update your password. Please try again.")
	}
	if !token.VerifyPassword(fresh.PasswordHash, req.PasswordCurrent) {
		return jsonError(c, http.StatusUnauthorized, "Current password is incorrect.")
	}

	if err := h.Users.UpdatePassword(ctx, fresh.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not update your password. Please try again.")
	}
	updated, err := h.Users.GetByID(ctx, fresh.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not update your password. Please try again.")
	}
	return h.sendSession(c, updated, http.StatusOK)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u := mustCurrentUser(c)
	if u == nil {
		return jsonError(c, http.StatusUnauthorized, "Please login to get access!")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"user": u.Public()}})
}

// ----- helpers -----

// sendSession issues a session token, sets the session cookie, and writes
// the success envelope. The user JSON never includes password material.
func (h *AuthHandler) sendSession(c echo.Context, u model.User, status int) error {
	s, err := token.NewSession(h.Cfg.JWTSecret, u.ID, time.Duration(h.Cfg.SessionTTLMin)*time.Minute)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Could not log you in. Please try again.")
	}
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    s.Token,
		Expires:  time.Now().Add(time.Duration(h.Cfg.CookieExpiryDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   isSecureRequest(c),
		Path:     "/",
	})
	return c.JSON(status, echo.Map{
		"status": "success",
		"token":  s.Token,
		"data":   echo.Map{"user": u.Public()},
	})
}

// isSecureRequest reports whether the connection is TLS-terminated, either
// directly or by a trusted proxy announcing it via X-Forwarded-Proto.
func isSecureRequest(c echo.Context) bool {
	return c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https"
}

func baseURL(c echo.Context) string {
	scheme := "http"
	if isSecureRequest(c) {
		scheme = "https"
	}
	return scheme + "://" + c.Request().Host
}

// validateNewPassword returns a user-facing message when the new password
// pair is unacceptable, or "" when it is fine.
func validateNewPassword(password, confirm string) string {
	if password == "" {
		return "Please provide a password!"
	}
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}

func firstName(name string) string {
	if parts := strings.Fields(name); len(parts) > 0 {
		return parts[0]
	}
	return name
}

// jsonError writes the standard error envelope: "fail" for client errors,
// "error" for server errors.
func jsonError(c echo.Context, code int, msg string) error {
	status := "fail"
	if code >= http.StatusInternalServerError {
		status = "error"
	}
	return c.JSON(code, echo.Map{"status": status, "message": msg})
}
