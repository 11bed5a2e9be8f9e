package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/okoshkin/storefront/internal/authz"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// RotateToken exchanges a valid stored refresh token for a fresh
// access/refresh pair, persisting the new refresh token.
func (t *TokenService) RotateToken(rawToken string) (string, string, jwt.MapClaims, error) {
	claims, err := t.ValidateRefresh(rawToken)
	if err != nil {
		return "", "", nil, err
	}

	actor := actorFromClaims(claims)

	newAccess, err := t.SignAccessToken(actor)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := t.SignRefreshToken(actor)
	if err != nil {
		return "", "", nil, err
	}
	if err := t.SaveRefreshToken(newRefresh, actor.ID); err != nil {
		return "", "", nil, err
	}
	return newAccess, newRefresh, claims, nil
}

// AutoRefreshMiddleware authenticates the request from the access token
// cookie, transparently rotating an expired access token against the
// refresh token. On success the actor lands in the echo context for the
// authorization layer.
func (t *TokenService) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		asCookie, err := c.Cookie("accessToken")
		if err == nil {
			token, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
				return t.JWTSecret, nil
			})
			if err == nil && token.Valid {
				authz.IntoContext(c, actorFromClaims(token.Claims.(jwt.MapClaims)))
				return next(c)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		rfCookie, err := c.Cookie("refreshToken")
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		newAccess, newRefresh, claims, err := t.RotateToken(rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
		}

		c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(AccessTokenTTL)))
		c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(RefreshTokenTTL)))

		authz.IntoContext(c, actorFromClaims(claims))
		return next(c)
	}
}

func actorFromClaims(claims jwt.MapClaims) authz.Actor {
	var a authz.Actor
	if sub, ok := claims["sub"].(float64); ok {
		a.ID = uint(sub)
	}
	if name, ok := claims["name"].(string); ok {
		a.Username = name
	}
	if staff, ok := claims["staff"].(bool); ok {
		a.IsStaff = staff
	}
	if employee, ok := claims["employee"].(bool); ok {
		a.IsEmployee = employee
	}
	return a
}
