package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// Identity is the trusted result of credential validation. Sender identity on
// every operation derives from it, never from client-supplied fields.
type Identity struct {
	UserID uuid.UUID
	Role   model.Role
}

// Auther validates inbound identity tokens and issues new ones for the auth
// routes. Verification happens before any registry state is created.
type Auther interface {
	Verify(token string) (Identity, error)
	Issue(userID uuid.UUID, role model.Role) (string, error)
}

var _ Auther = (*JWTAuth)(nil)

type JWTAuth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTAuth(secret string, ttl time.Duration) *JWTAuth {
	return &JWTAuth{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Verify checks signature, structure and expiry, and extracts the claims.
func (a *JWTAuth) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad user id claim", ErrInvalidToken)
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Identity{UserID: userID, Role: role}, nil
}

// Issue signs a fresh HS256 token for the given identity.
func (a *JWTAuth) Issue(userID uuid.UUID, role model.Role) (string, error) {
	now := a.now()
	claims := &tokenClaims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
