package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/storefront/internal/domain"
	"github.com/okoshkin/storefront/internal/models"
	"github.com/okoshkin/storefront/internal/testutil"
)

type fixture struct {
	service *Service
	alice   models.User
	bob     models.User
	orders  []models.Order
}

// seedOrders creates two orders for alice (totals 50.00 and 120.00) and
// one for bob (total 20.00).
func seedOrders(t *testing.T) fixture {
	db := testutil.NewDB(t)
	alice := testutil.SeedUser(t, db, "alice", false, false)
	bob := testutil.SeedUser(t, db, "bob", false, false)
	category := testutil.SeedCategory(t, db, "misc")
	cheap := testutil.SeedProduct(t, db, category.ID, "cheap", "10.00", 100)
	dear := testutil.SeedProduct(t, db, category.ID, "dear", "60.00", 100)

	build := func(userID uint, status string, lines map[uint]int) models.Order {
		order := models.Order{UserID: userID, Status: status}
		require.NoError(t, db.Create(&order).Error)
		for productID, quantity := range lines {
			require.NoError(t, db.Create(&models.OrderItem{
				OrderID:   order.ID,
				ProductID: productID,
				Quantity:  quantity,
			}).Error)
		}
		return order
	}

	o1 := build(alice.ID, models.StatusProcessing, map[uint]int{cheap.ID: 5}) // 50.00
	o2 := build(alice.ID, models.StatusCompleted, map[uint]int{dear.ID: 2})  // 120.00
	o3 := build(bob.ID, models.StatusProcessing, map[uint]int{cheap.ID: 2})  // 20.00

	return fixture{service: NewService(db), alice: alice, bob: bob, orders: []models.Order{o1, o2, o3}}
}

func TestListFilterByIDQuery(t *testing.T) {
	f := seedOrders(t)

	result, err := f.service.List(context.Background(), Filter{Query: "1"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, uint(1), result[0].ID)

	// A digits-only query that matches no order id matches nothing,
	// even if a username contains it.
	result, err = f.service.List(context.Background(), Filter{Query: "424242"})
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestListFilterByUsername(t *testing.T) {
	f := seedOrders(t)

	result, err := f.service.List(context.Background(), Filter{Query: "ALI"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, o := range result {
		require.Equal(t, f.alice.ID, o.UserID)
	}
}

func TestListFilterByStatus(t *testing.T) {
	f := seedOrders(t)

	result, err := f.service.List(context.Background(), Filter{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, models.StatusCompleted, result[0].Status)
}

func TestListFilterByTotalBounds(t *testing.T) {
	f := seedOrders(t)

	min := decimal.RequireFromString("50.00")
	max := decimal.RequireFromString("120.00")

	// Bounds are inclusive on both ends.
	result, err := f.service.List(context.Background(), Filter{TotalMin: &min, TotalMax: &max})
	require.NoError(t, err)
	require.Len(t, result, 2)

	tight := decimal.RequireFromString("60.00")
	result, err = f.service.List(context.Background(), Filter{TotalMin: &tight})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "120", result[0].Total().String())
}

func TestListFilterByDateRange(t *testing.T) {
	f := seedOrders(t)

	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	result, err := f.service.List(context.Background(), Filter{DateFrom: &yesterday, DateTo: &tomorrow})
	require.NoError(t, err)
	require.Len(t, result, 3)

	// Inclusive on the creation date itself.
	result, err = f.service.List(context.Background(), Filter{DateFrom: &today, DateTo: &today})
	require.NoError(t, err)
	require.Len(t, result, 3)

	result, err = f.service.List(context.Background(), Filter{DateTo: &yesterday})
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestListNewestFirst(t *testing.T) {
	f := seedOrders(t)

	result, err := f.service.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, result, 3)
	for i := 1; i < len(result); i++ {
		require.False(t, result[i].CreatedAt.After(result[i-1].CreatedAt))
	}
}

func TestUpdateStatus(t *testing.T) {
	f := seedOrders(t)

	order, err := f.service.UpdateStatus(context.Background(), f.orders[0].ID, models.StatusFailed)
	require.NoError(t, err)
	require.Equal(t, models.StatusFailed, order.Status)

	_, err = f.service.UpdateStatus(context.Background(), f.orders[0].ID, "shipped")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.UpdateStatus(context.Background(), 999, models.StatusFailed)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetForUserIsolation(t *testing.T) {
	f := seedOrders(t)

	// Bob cannot see alice's order; it reads as not-found.
	_, err := f.service.GetForUser(context.Background(), f.bob.ID, f.orders[0].ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	order, err := f.service.GetForUser(context.Background(), f.alice.ID, f.orders[0].ID)
	require.NoError(t, err)
	require.Equal(t, f.alice.ID, order.UserID)
}

func TestListForUser(t *testing.T) {
	f := seedOrders(t)

	result, err := f.service.ListForUser(context.Background(), f.alice.ID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, o := range result {
		require.Equal(t, f.alice.ID, o.UserID)
	}
}
