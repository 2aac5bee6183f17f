package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Admin roles. A superadmin manages every instance; an instance admin is
// scoped to the single signage id carried in its claims.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
)

// Claims holds JWT claims for admin sessions.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	SignageID string `json:"signage_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles admin token generation and validation. Superadmin
// sessions get a deliberately short lifetime.
type JWTService struct {
	secret           []byte
	adminExpire      time.Duration
	superAdminExpire time.Duration
}

// NewJWTService creates a JWT service.
func NewJWTService(secret string, adminExpireHours, superAdminExpireMins int) *JWTService {
	return &JWTService{
		secret:           []byte(secret),
		adminExpire:      time.Duration(adminExpireHours) * time.Hour,
		superAdminExpire: time.Duration(superAdminExpireMins) * time.Minute,
	}
}

// Generate creates a signed token for the given role. signageID is empty for
// superadmins.
func (s *JWTService) Generate(email, role, signageID string) (string, error) {
	expire := s.adminExpire
	if role == RoleSuperAdmin {
		expire = s.superAdminExpire
	}
	claims := Claims{
		Email:     email,
		Role:      role,
		SignageID: signageID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates a token, returning its claims.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
