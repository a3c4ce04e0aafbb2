package token // package token provides session JWTs and password-reset tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Sentinel errors returned by ParseSession. Callers translate both into a
// 401 but pick different user-facing messages.
var (
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenInvalid = errors.New("session token invalid")
)

// Session represents a signed JWT session token along with its expiry. The
// Token field contains the serialized JWT string; it is delivered to the
// client both in the response body and as an HTTP-only cookie.
type Session struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSession builds and signs an HS256 JWT for a user. The JWT carries the
// standard claims only: subject (sub), expiration (exp) and issued at (iat).
// Validity is purely a function of the signature, the expiry, and the
// subject's password-changed-at timestamp checked by the middleware; nothing
// is persisted server-side.
func NewSession(secret string, userID uint64, ttl time.Duration) (Session, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, Exp: exp}, nil
}

// ParseSession verifies a serialized session token and returns the subject
// user ID and the issue time. It returns ErrTokenExpired when the lifetime
// has elapsed and ErrTokenInvalid for any other verification failure
// (malformed input, bad signature, wrong algorithm, missing claims).
func ParseSession(secret, raw string) (userID uint64, issuedAt time.Time, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; the service only
		// ever issues HS256.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, time.Time{}, ErrTokenExpired
		}
		return 0, time.Time{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return 0, time.Time{}, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, time.Time{}, ErrTokenInvalid
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return 0, time.Time{}, ErrTokenInvalid
	}
	return uint64(sub), time.Unix(int64(iat), 0).UTC(), nil
}
