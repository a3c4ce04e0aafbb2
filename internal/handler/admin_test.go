package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourhive/tour-booking-auth/internal/middleware"
	"github.com/tourhive/tour-booking-auth/internal/model"
)

func adminServer(h *AuthHandler, st *fakeStore) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/v1/admin")
	g.Use(middleware.Protect(testSecret, st))
	g.Use(middleware.RestrictTo(model.RoleAdmin))
	g.GET("/users/:id", h.AdminGetUser)
	return e
}

func promote(t *testing.T, st *fakeStore, uid uint64, role model.Role) {
	t.Helper()
	st.mu.Lock()
	defer st.mu.Unlock()
	u, ok := st.users[uid]
	require.True(t, ok)
	u.Role = role
	st.users[uid] = u
}

func TestAdminGetUser_ForbiddenForRegularUser(t *testing.T) {
	h, st, _, _ := newTestHandler()
	mustSignup(t, h, "Ada", "ada@example.com", "secret123")
	tok := login(t, h, "ada@example.com", "secret123")

	e := adminServer(h, st)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You don't have permission to perform this action.")
}

func TestAdminGetUser_Success(t *testing.T) {
	h, st, _, _ := newTestHandler()
	adminID := mustSignup(t, h, "Root", "root@example.com", "secret123")
	promote(t, st, adminID, model.RoleAdmin)
	targetID := mustSignup(t, h, "Ada", "ada@example.com", "secret123")
	tok := login(t, h, "root@example.com", "secret123")

	e := adminServer(h, st)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/admin/users/%d", targetID), nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestAdminGetUser_NotFound(t *testing.T) {
	h, st, _, _ := newTestHandler()
	adminID := mustSignup(t, h, "Root", "root@example.com", "secret123")
	promote(t, st, adminID, model.RoleAdmin)
	tok := login(t, h, "root@example.com", "secret123")

	e := adminServer(h, st)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/999", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No user found with that ID")
}
