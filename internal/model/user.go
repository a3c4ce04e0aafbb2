package model

import "time"

// Role is the closed set of account roles. Authorization middleware compares
// against these values; anything else is rejected on signup.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users` table.
// The password is only ever persisted as a bcrypt hash. The reset-token pair
// (hash + expiry) is set while a password reset is pending and cleared
// together on redemption or on a failed reset-mail send.
//
// Fields:
//
//	ID                   – primary key identifier of the user.
//	Name                 – display name.
//	Email                – unique, lowercased email address.
//	PasswordHash         – bcrypt hashed password.
//	Role                 – account role (user/guide/lead-guide/admin).
//	PasswordChangedAt    – when the password last changed; nil until the
//	                       first change. Session tokens issued before this
//	                       instant are rejected.
//	PasswordResetToken   – SHA-256 hex digest of the pending reset token.
//	PasswordResetExpires – expiry of the pending reset token.
//	Active               – whether the account is active.
type User struct {
	ID                   uint64     // users.id
	Name                 string     // users.name
	Email                string     // users.email
	PasswordHash         string     // users.password_hash
	Role                 Role       // users.role
	PasswordChangedAt    *time.Time // users.password_changed_at (nullable)
	PasswordResetToken   *string    // users.password_reset_token (nullable)
	PasswordResetExpires *time.Time // users.password_reset_expires (nullable)
	Active               bool       // users.is_active
	CreatedAt            time.Time  // users.created_at
	UpdatedAt            time.Time  // users.updated_at
}

// ChangedPasswordAfter reports whether the password was changed after the
// given session-token issue time. Timestamps are compared at second
// precision because JWT iat claims carry Unix seconds.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// PublicUser is the JSON view of a user returned by the API. It carries no
// password material of any kind.
type PublicUser struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public returns the API view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
