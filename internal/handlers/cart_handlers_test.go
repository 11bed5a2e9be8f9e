package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okoshkin/storefront/internal/models"
	"github.com/okoshkin/storefront/internal/testutil"
)

func TestAddToCartClampMessage(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", false, false)
	category := testutil.SeedCategory(t, env.DB, "books")
	product := testutil.SeedProduct(t, env.DB, category.ID, "paperback", "9.99", 20)

	body := map[string]int{"quantity": 30}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/add/1", body, &user)
	c.SetParamNames("product_id")
	c.SetParamValues(fmt.Sprint(product.ID))

	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string           `json:"message"`
		Item    models.OrderItem `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "20 items in stock", resp.Message)
	require.Equal(t, 20, resp.Item.Quantity)
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", false, false)
	category := testutil.SeedCategory(t, env.DB, "books")
	product := testutil.SeedProduct(t, env.DB, category.ID, "paperback", "9.99", 20)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/add/1", map[string]int{}, &user)
	c.SetParamNames("product_id")
	c.SetParamValues(fmt.Sprint(product.ID))

	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Item models.OrderItem `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Item.Quantity)
}

func TestAddToCartZeroStock(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", false, false)
	category := testutil.SeedCategory(t, env.DB, "books")
	product := testutil.SeedProduct(t, env.DB, category.ID, "sold-out", "9.99", 0)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/add/1", map[string]int{"quantity": 3}, &user)
	c.SetParamNames("product_id")
	c.SetParamValues(fmt.Sprint(product.ID))

	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "INVALID_QUANTITY", resp.Error)
}

func TestUpdateOtherUsersItemIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.SeedUser(t, env.DB, "alice", false, false)
	bob := testutil.SeedUser(t, env.DB, "bob", false, false)
	category := testutil.SeedCategory(t, env.DB, "books")
	product := testutil.SeedProduct(t, env.DB, category.ID, "paperback", "9.99", 20)

	// Alice puts three units in her cart.
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/add/1", map[string]int{"quantity": 3}, &alice)
	c.SetParamNames("product_id")
	c.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.Cart.AddToCart(c))

	var item models.OrderItem
	require.NoError(t, env.DB.First(&item).Error)

	// Bob posts an update against alice's item id.
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/update/1", map[string]int{"quantity": 1}, &bob)
	c.SetParamNames("item_id")
	c.SetParamValues(fmt.Sprint(item.ID))

	require.NoError(t, env.Cart.UpdateItem(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Alice's line is unchanged.
	var stored models.OrderItem
	require.NoError(t, env.DB.First(&stored, item.ID).Error)
	require.Equal(t, 3, stored.Quantity)
}

func TestConfirmOrderWithoutCart(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", false, false)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/order/confirm", nil, &user)
	require.NoError(t, env.Cart.ConfirmOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "NO_ACTIVE_ORDER", resp.Error)

	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestConfirmOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", false, false)
	category := testutil.SeedCategory(t, env.DB, "books")
	product := testutil.SeedProduct(t, env.DB, category.ID, "paperback", "9.99", 20)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart/add/1", map[string]int{"quantity": 5}, &user)
	c.SetParamNames("product_id")
	c.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.Cart.AddToCart(c))

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/order/confirm", nil, &user)
	require.NoError(t, env.Cart.ConfirmOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID uint   `json:"order_id"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.StatusProcessing, resp.Status)

	var stored models.Product
	require.NoError(t, env.DB.First(&stored, product.ID).Error)
	require.Equal(t, 15, stored.StockQuantity)
}

func TestGetCartEmpty(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", false, false)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/cart", nil, &user)
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Order *models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Order)
}
