package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/okoshkin/storefront/internal/authz"
	"github.com/okoshkin/storefront/internal/cart"
	"github.com/okoshkin/storefront/internal/models"
	"github.com/okoshkin/storefront/internal/orders"
	"github.com/okoshkin/storefront/internal/service"
	"github.com/okoshkin/storefront/internal/testutil"
)

type testEnv struct {
	T          *testing.T
	E          *echo.Echo
	DB         *gorm.DB
	Auth       *AuthHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Cart       *CartHandler
	Orders     *OrderHandler
	Users      *UserHandler
	Summary    *SummaryHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.NewDB(t)
	tokens := &service.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	return &testEnv{
		T:          t,
		E:          echo.New(),
		DB:         db,
		Auth:       &AuthHandler{DB: db, Tokens: tokens},
		Products:   &ProductHandler{DB: db},
		Categories: &CategoryHandler{DB: db},
		Cart:       &CartHandler{Engine: cart.NewEngine(db)},
		Orders:     &OrderHandler{Orders: orders.NewService(db)},
		Users:      &UserHandler{DB: db},
		Summary:    &SummaryHandler{DB: db},
	}
}

// doJSONRequest builds an echo context for a handler call. When a user
// is given, their actor is placed in the context the same way the auth
// middleware would.
func (env *testEnv) doJSONRequest(method, path string, body interface{}, user *models.User) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if user != nil {
		authz.IntoContext(c, authz.Actor{
			ID:         user.ID,
			Username:   user.Username,
			IsStaff:    user.IsStaff,
			IsEmployee: user.IsEmployee,
		})
	}
	return rec, c
}
