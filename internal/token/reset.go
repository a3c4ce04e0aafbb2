package token

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for reset tokens
	"encoding/hex"  // hex encoding of random bytes and digests
	"time"
)

// ResetToken is a single-use password-reset secret. The Raw value is mailed
// to the user and never persisted; only the SHA-256 digest in Hash is stored
// on the user record, together with Exp.
type ResetToken struct {
	Raw  string    // raw token string sent to the user out-of-band
	Hash string    // SHA-256 hex digest stored in the database
	Exp  time.Time // UTC expiration time
}

// NewResetToken returns a cryptographically random reset token valid for the
// given duration. Redemption re-hashes the presented raw value and compares
// it against the stored digest.
func NewResetToken(ttl time.Duration) (ResetToken, error) {
	raw, err := randomHex(32) // 32 bytes -> 64 hex chars
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Raw:  raw,
		Hash: HashResetRaw(raw),
		Exp:  time.Now().UTC().Add(ttl),
	}, nil
}

// HashResetRaw returns the SHA-256 hash of a raw reset token as a hex
// string. Storing only the hash means a leaked database row cannot be used
// to reset the account's password.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
