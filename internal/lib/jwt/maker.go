// Package jwt issues and verifies the signed access tokens handed out at login.
//
// Maker is the codec contract used by the auth service; MakerImpl signs HS256
// tokens with a process-wide secret and a fixed time to live.
package jwt

import (
	"errors"
	"time"
)

// ErrInvalidToken is the only error ParseToken returns. Bad signatures,
// malformed input and expired claims are not distinguished.
var ErrInvalidToken = errors.New("invalid token")

// Maker describes token generation and parsing.
type Maker interface {
	// GenerateToken returns a token whose subject is the user id.
	GenerateToken(userUID string) (string, error)
	// ParseToken returns the subject of a valid token.
	ParseToken(tokenStr string) (string, error)
}

// MakerImpl implements Maker with a shared secret and a token TTL.
type MakerImpl struct {
	secretKey []byte        // HMAC signing key
	tokenTTL  time.Duration // Token lifetime
	now       func() time.Time
}

// NewJWTMaker creates a MakerImpl from a secret key and a TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
