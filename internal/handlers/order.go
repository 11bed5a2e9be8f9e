package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/okoshkin/storefront/internal/models"
	"github.com/okoshkin/storefront/internal/mykafka"
	"github.com/okoshkin/storefront/internal/orders"
)

// OrderHandler serves the staff/employee order management screens and
// the user's own order history.
type OrderHandler struct {
	Orders   *orders.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

type orderView struct {
	ID        uint              `json:"id"`
	UserID    uint              `json:"user_id"`
	Username  string            `json:"username,omitempty"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	Total     decimal.Decimal   `json:"total"`
	Items     []models.OrderItem `json:"items,omitempty"`
}

func viewOf(o models.Order, withItems bool) orderView {
	v := orderView{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		Total:     o.Total(),
	}
	if o.User != nil {
		v.Username = o.User.Username
	}
	if withItems {
		v.Items = o.Items
	}
	return v
}

func parseFilter(c echo.Context) (orders.Filter, error) {
	f := orders.Filter{
		Query:  c.QueryParam("q"),
		Status: c.QueryParam("status"),
	}
	if s := c.QueryParam("total_min"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid total_min")
		}
		f.TotalMin = &d
	}
	if s := c.QueryParam("total_max"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid total_max")
		}
		f.TotalMax = &d
	}
	if s := c.QueryParam("date_from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
		}
		f.DateFrom = &t
	}
	if s := c.QueryParam("date_to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
		}
		f.DateTo = &t
	}
	return f, nil
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	result, err := h.Orders.List(c.Request().Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}

	views := make([]orderView, 0, len(result))
	for _, o := range result {
		views = append(views, viewOf(o, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views, "total": len(views)})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Orders.Get(c.Request().Context(), uint(id))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(*order, true))
}

// UpdateStatus is the admin override on order status, a restricted enum.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Orders.UpdateStatus(c.Request().Context(), uint(id), req.Status)
	if err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, fmt.Sprint(order.ID), map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, viewOf(*order, true))
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	result, err := h.Orders.ListForUser(c.Request().Context(), actor.ID)
	if err != nil {
		return errorResponse(c, err)
	}

	views := make([]orderView, 0, len(result))
	for _, o := range result {
		views = append(views, viewOf(o, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views, "total": len(views)})
}

func (h *OrderHandler) MyOrderDetail(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Orders.GetForUser(c.Request().Context(), actor.ID, uint(id))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(*order, true))
}
