package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/commerce-platform/internal/domain"
)

// ErrInvalidToken is the single outcome reported for any validation failure:
// bad signature, malformed token, or expiry. Callers cannot distinguish them,
// which keeps the failure surface uniform; logs may carry the underlying
// cause.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified (username, role) pair derived from a token for
// one request. It is never persisted.
type Identity struct {
	Username string
	Role     domain.Role
}

// TokenManager issues and validates signed tokens. It is stateless; there is
// no revocation list, tokens expire naturally.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the JWT payload.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue builds and signs a time-bounded token binding subject and role.
func (tm *TokenManager) Issue(username string, role domain.Role) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Validate verifies signature and expiry and returns the identity. It fails
// closed: any parse error yields ErrInvalidToken, never a partial success.
func (tm *TokenManager) Validate(tokenStr string) (*Identity, error) {
	claims, err := tm.parse(tokenStr)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{Username: claims.Subject, Role: claims.Role}, nil
}

// ClaimsOf extracts the raw claims from a token string. It assumes prior
// validation and still rejects unverifiable tokens.
func (tm *TokenManager) ClaimsOf(tokenStr string) (*Claims, error) {
	claims, err := tm.parse(tokenStr)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (tm *TokenManager) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
