package auth

import (
	"errors"
	"fmt"
	"time"

	"gastro-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type JWTCustomClaims struct {
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	LocationID  *uint    `json:"location_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for user. user.Role must be loaded.
func GenerateToken(secret string, user *models.User) (string, error) {
	if user.Role == nil {
		return "", fmt.Errorf("user %d has no role loaded", user.ID)
	}

	perms := user.Role.Permissions
	if user.Role.Name == models.RoleAdmin {
		perms = models.AllPermissions
	}

	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role.Name,
		Permissions: perms,
		LocationID:  user.LocationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
