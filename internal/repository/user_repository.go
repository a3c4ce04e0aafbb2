package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tourhive/tour-booking-auth/internal/model"
	"github.com/tourhive/tour-booking-auth/internal/token"
)

const userColumns = "id,name,email,password_hash,role,password_changed_at,password_reset_token,password_reset_expires,is_active,created_at,updated_at"

// UserRepo persists users in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a user, returning its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := token.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, string(role))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// SetResetToken stores the reset-token digest and its expiry on the user
// row. Nothing else on the record is touched, mirroring a save that skips
// full validation.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, hash string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_reset_token=?, password_reset_expires=? WHERE id=?",
		hash, expires, id)
	return err
}

// ClearResetToken removes any pending reset token from the user row. It is
// called both after a successful redemption and when the reset mail could
// not be sent.
func (r *UserRepo) ClearResetToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_reset_token=NULL, password_reset_expires=NULL WHERE id=?", id)
	return err
}

// GetByResetToken returns the user whose stored reset digest matches and
// whose expiry is still in the future. Expiry is compared in Go so an
// expired token is indistinguishable from an unknown one: both return
// sql.ErrNoRows.
func (r *UserRepo) GetByResetToken(ctx context.Context, hash string) (model.User, error) {
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE password_reset_token=? LIMIT 1", hash))
	if err != nil {
		return model.User{}, err
	}
	if u.PasswordResetExpires == nil || time.Now().UTC().After(*u.PasswordResetExpires) {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// UpdatePassword hashes and stores a new password and stamps
// password_changed_at. The stamp is backdated one second so a session token
// minted in the same second as the change still verifies.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := token.HashPassword(password, cost)
	if err != nil {
		return err
	}
	changedAt := time.Now().UTC().Add(-time.Second)
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_changed_at=? WHERE id=?",
		hash, changedAt, id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		role      string
		changedAt sql.NullTime
		resetTok  sql.NullString
		resetExp  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&changedAt, &resetTok, &resetExp, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if changedAt.Valid {
		t := changedAt.Time
		u.PasswordChangedAt = &t
	}
	if resetTok.Valid {
		s := resetTok.String
		u.PasswordResetToken = &s
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.PasswordResetExpires = &t
	}
	return u, nil
}
