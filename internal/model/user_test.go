package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleGuide.Valid())
	assert.True(t, RoleLeadGuide.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u := User{}
	assert.False(t, u.ChangedPasswordAfter(issued), "never-changed password cannot invalidate a token")

	before := issued.Add(-time.Hour)
	u.PasswordChangedAt = &before
	assert.False(t, u.ChangedPasswordAfter(issued), "change before issuance keeps the token valid")

	after := issued.Add(time.Hour)
	u.PasswordChangedAt = &after
	assert.True(t, u.ChangedPasswordAfter(issued), "change after issuance must invalidate the token")

	same := issued
	u.PasswordChangedAt = &same
	assert.False(t, u.ChangedPasswordAfter(issued), "same-second change must not invalidate the token")
}

func TestPublicUserCarriesNoPasswordMaterial(t *testing.T) {
	now := time.Now()
	tok := "deadbeef"
	u := User{
		ID:                   1,
		Name:                 "Ada Lovelace",
		Email:                "ada@example.com",
		PasswordHash:         "$2a$10$abcdefghijklmnopqrstuv",
		Role:                 RoleUser,
		PasswordResetToken:   &tok,
		PasswordResetExpires: &now,
	}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	body := strings.ToLower(string(b))
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "$2a$")
	assert.NotContains(t, body, "deadbeef")
	assert.Contains(t, body, "ada@example.com")
}
