package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourhive/tour-booking-auth/internal/model"
	"github.com/tourhive/tour-booking-auth/internal/token"
)

const testSecret = "test-signing-secret"

// fakeLoader satisfies UserLoader with a single in-memory user.
type fakeLoader struct {
	user model.User
	err  error
}

func (f *fakeLoader) GetByID(_ context.Context, id uint64) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	if id != f.user.ID {
		return model.User{}, sql.ErrNoRows
	}
	return f.user, nil
}

// echoHandler records whether it ran and which user it saw.
func echoHandler(saw **model.User) echo.HandlerFunc {
	return func(c echo.Context) error {
		if u, ok := CurrentUser(c); ok {
			*saw = u
		}
		return c.String(http.StatusOK, "ok")
	}
}

func serve(mw echo.MiddlewareFunc, h echo.HandlerFunc, mutate func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/protected", h, mw)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mintSession(t *testing.T, userID uint64) string {
	t.Helper()
	s, err := token.NewSession(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return s.Token
}

func TestProtect_NoToken(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1, Role: model.RoleUser}}
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please login to get access!")
	assert.Nil(t, saw)
}

func TestProtect_BadToken(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1}}
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not.a.jwt")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token. Please log in again!")
}

func TestProtect_ExpiredToken(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1}}
	s, err := token.NewSession(testSecret, 1, -time.Minute)
	require.NoError(t, err)
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+s.Token)
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your token has expired! Please log in again.")
}

func TestProtect_UserNoLongerExists(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 99}}
	tok := mintSession(t, 1) // subject 1 is not in the store
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer exists")
}

func TestProtect_PasswordChangedAfterIssue(t *testing.T) {
	changed := time.Now().Add(time.Minute) // after the token's iat
	loader := &fakeLoader{user: model.User{ID: 1, PasswordChangedAt: &changed}}
	tok := mintSession(t, 1)
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User recently changed password! Please log in again.")
	assert.Nil(t, saw)
}

func TestProtect_BearerHeaderSuccess(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1, Email: "a@example.com", Role: model.RoleUser}}
	tok := mintSession(t, 1)
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saw)
	assert.Equal(t, "a@example.com", saw.Email)
}

func TestProtect_CookieSuccess(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1, Email: "a@example.com", Role: model.RoleUser}}
	tok := mintSession(t, 1)
	var saw *model.User

	rec := serve(Protect(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: tok})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saw)
}

func TestIsLoggedIn_FailureProceedsAnonymously(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1}}
	var saw *model.User

	rec := serve(IsLoggedIn(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: "garbage"})
	})

	assert.Equal(t, http.StatusOK, rec.Code, "soft auth must never reject")
	assert.Nil(t, saw)
}

func TestIsLoggedIn_ValidTokenResolvesUser(t *testing.T) {
	loader := &fakeLoader{user: model.User{ID: 1, Email: "a@example.com"}}
	tok := mintSession(t, 1)
	var saw *model.User

	rec := serve(IsLoggedIn(testSecret, loader), echoHandler(&saw), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: tok})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saw)
	assert.Equal(t, "a@example.com", saw.Email)
}
