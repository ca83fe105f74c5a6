package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken covers tampered, malformed and expired activation links.
var ErrInvalidToken = errors.New("invalid activation token")

// activationClaims binds an activation link to one username.
type activationClaims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// Signer issues and verifies the signed tokens embedded in account
// activation links.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign produces an activation token for the username.
func (s *Signer) Sign(username string) (string, error) {
	claims := activationClaims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the username the token was issued for, or ErrInvalidToken
// if the signature does not check out or the token has expired.
func (s *Signer) Verify(tokenStr string) (string, error) {
	var claims activationClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}
