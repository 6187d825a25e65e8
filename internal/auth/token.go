package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Caller is the identity resolved from a request's bearer token.
// Absence is signalled by the comma-ok return of ResolveCaller, never
// by a zero-valued Caller floating around.
type Caller struct {
	ID       string
	Username string
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: 24 * time.Hour}
}

func (t *TokenService) Sign(userID, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       userID,
		"username": username,
		"exp":      time.Now().Add(t.ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

// ResolveCaller turns a raw token into a caller identity. Every failure
// mode degrades to anonymous rather than an error: no token, a token
// that fails verification, and a verified token missing the id claim
// all yield (Caller{}, false). This fail-open posture is deliberate —
// anonymous requests are legal for most routes, and routes that require
// a caller enforce it themselves.
func (t *TokenService) ResolveCaller(raw string) (Caller, bool) {
	if raw == "" {
		return Caller{}, false
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Caller{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, false
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return Caller{}, false
	}
	username, _ := claims["username"].(string)
	return Caller{ID: id, Username: username}, true
}
