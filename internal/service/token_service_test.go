package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/storefront/internal/authz"
	"github.com/okoshkin/storefront/internal/testutil"
)

func newTokenService(t *testing.T) *TokenService {
	return &TokenService{
		DB:            testutil.NewDB(t),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestAccessTokenCarriesRoleFlags(t *testing.T) {
	ts := newTokenService(t)
	actor := authz.Actor{ID: 42, Username: "staffer", IsStaff: true, IsEmployee: false}

	signed, err := ts.SignAccessToken(actor)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(tk *jwt.Token) (interface{}, error) {
		return ts.JWTSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	got := actorFromClaims(token.Claims.(jwt.MapClaims))
	require.Equal(t, actor, got)
}

func TestRefreshRotation(t *testing.T) {
	ts := newTokenService(t)
	actor := authz.Actor{ID: 7, Username: "shopper"}

	refresh, err := ts.SignRefreshToken(actor)
	require.NoError(t, err)
	require.NoError(t, ts.SaveRefreshToken(refresh, actor.ID))

	newAccess, newRefresh, claims, err := ts.RotateToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)
	require.Equal(t, actor, actorFromClaims(claims))
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	ts := newTokenService(t)

	access, err := ts.SignAccessToken(authz.Actor{ID: 7})
	require.NoError(t, err)

	_, err = ts.ValidateRefresh(access)
	require.Error(t, err)
}

func TestRevokedRefreshRejected(t *testing.T) {
	ts := newTokenService(t)
	actor := authz.Actor{ID: 7, Username: "shopper"}

	refresh, err := ts.SignRefreshToken(actor)
	require.NoError(t, err)
	require.NoError(t, ts.SaveRefreshToken(refresh, actor.ID))
	require.NoError(t, ts.RevokeRefresh(refresh))

	_, err = ts.ValidateRefresh(refresh)
	require.Error(t, err)
	require.Contains(t, err.Error(), "revoked")
}

func TestUnknownRefreshRejected(t *testing.T) {
	ts := newTokenService(t)
	actor := authz.Actor{ID: 7}

	// Signed but never stored.
	refresh, err := ts.SignRefreshToken(actor)
	require.NoError(t, err)

	_, err = ts.ValidateRefresh(refresh)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}
