package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims holds the registered claims of an access token. The user id
// travels in Subject.
type CustomClaims struct {
	jwt.RegisteredClaims
}

// GenerateToken creates an HS256 token for userUID that expires after tokenTTL.
func (j *MakerImpl) GenerateToken(userUID string) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken checks the signature, the algorithm and the expiry of tokenStr
// and returns its subject. Any failure yields ErrInvalidToken.
func (j *MakerImpl) ParseToken(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidToken
	}
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
