package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	shopper := Actor{ID: 1}
	staff := Actor{ID: 2, IsStaff: true}
	employee := Actor{ID: 3, IsEmployee: true}
	anonymous := Actor{}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"shopper cannot manage catalog", shopper, ManageCatalog, false},
		{"shopper cannot manage orders", shopper, ManageOrders, false},
		{"shopper sees own orders", shopper, ViewOwnOrders, true},
		{"staff manages catalog", staff, ManageCatalog, true},
		{"staff manages orders", staff, ManageOrders, true},
		{"employee manages catalog", employee, ManageCatalog, true},
		{"employee manages orders", employee, ManageOrders, true},
		{"anonymous sees nothing", anonymous, ViewOwnOrders, false},
		{"anonymous cannot manage", anonymous, ManageCatalog, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Allow(tc.actor, tc.action))
		})
	}
}

func TestRequireMiddleware(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(actor *Actor, action Action) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if actor != nil {
			IntoContext(c, *actor)
		}
		return Require(action)(ok)(c)
	}

	// No actor in context: the caller never authenticated.
	err := run(nil, ManageOrders)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)

	// Authenticated but not allowed: forbidden, not a redirect.
	err = run(&Actor{ID: 7}, ManageOrders)
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusForbidden, he.Code)

	require.NoError(t, run(&Actor{ID: 7, IsEmployee: true}, ManageOrders))
	require.NoError(t, run(&Actor{ID: 7}, ViewOwnOrders))
}
