package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/okoshkin/storefront/internal/authz"
	"github.com/okoshkin/storefront/internal/models"
)

func accessClaims(a authz.Actor, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      a.ID,
		"name":     a.Username,
		"staff":    a.IsStaff,
		"employee": a.IsEmployee,
		"exp":      exp.Unix(),
	}
}

func (t *TokenService) SignAccessToken(a authz.Actor) (string, error) {
	claims := accessClaims(a, time.Now().Add(AccessTokenTTL))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.JWTSecret)
}

func (t *TokenService) SignRefreshToken(a authz.Actor) (string, error) {
	claims := accessClaims(a, time.Now().Add(RefreshTokenTTL))
	claims["typ"] = "refresh"
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.RefreshSecret)
}

func (t *TokenService) SaveRefreshToken(token string, userID uint) error {
	stored := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(RefreshTokenTTL).Unix(),
		Revoked:   false,
	}
	if err := t.DB.Create(&stored).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ValidateRefresh checks signature, typ claim and the stored copy of a
// refresh token. Revoked or expired tokens are rejected.
func (t *TokenService) ValidateRefresh(rawToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(rawToken, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.RefreshSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	var stored models.RefreshToken
	if err := t.DB.Where("token = ?", rawToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}
	return claims, nil
}

func (t *TokenService) RevokeRefresh(token string) error {
	if err := t.DB.Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
