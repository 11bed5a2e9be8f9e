package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okoshkin/storefront/internal/cart"
	"github.com/okoshkin/storefront/internal/mykafka"
)

// CartHandler exposes the cart/order engine over HTTP. Authorization
// happens before these handlers run; ownership checks happen inside the
// engine, which answers not-found for anything the caller does not own.
type CartHandler struct {
	Engine   *cart.Engine
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, userID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(userID), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	order, item, warning, err := h.Engine.AddItem(c.Request().Context(), actor.ID, uint(productID), req.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, actor.ID, map[string]any{
		"type":      "cart_item_added",
		"userID":    actor.ID,
		"orderID":   order.ID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})

	resp := echo.Map{"order_id": order.ID, "item": item}
	if warning != "" {
		resp["message"] = warning
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	order, err := h.Engine.ViewCart(c.Request().Context(), actor.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	if order == nil {
		return c.JSON(http.StatusOK, echo.Map{"order": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order": order,
		"total": order.Total(),
	})
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, removed, warning, err := h.Engine.UpdateItemQuantity(c.Request().Context(), actor.ID, uint(itemID), req.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}

	if removed {
		h.publish(c, actor.ID, map[string]any{
			"type":   "cart_item_removed",
			"userID": actor.ID,
			"itemID": itemID,
		})
		return c.JSON(http.StatusOK, echo.Map{"removed_item": itemID})
	}

	h.publish(c, actor.ID, map[string]any{
		"type":     "cart_item_updated",
		"userID":   actor.ID,
		"itemID":   item.ID,
		"quantity": item.Quantity,
	})

	resp := echo.Map{"item": item}
	if warning != "" {
		resp["message"] = warning
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	if err := h.Engine.RemoveItem(c.Request().Context(), actor.ID, uint(itemID)); err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, actor.ID, map[string]any{
		"type":   "cart_item_removed",
		"userID": actor.ID,
		"itemID": itemID,
	})

	return c.JSON(http.StatusOK, echo.Map{"removed_item": itemID})
}

func (h *CartHandler) ConfirmOrder(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	order, err := h.Engine.ConfirmOrder(c.Request().Context(), actor.ID)
	if err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, actor.ID, map[string]any{
		"type":    "order_confirmed",
		"userID":  actor.ID,
		"orderID": order.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"status":   order.Status,
		"message":  "your order was successfully processed",
	})
}
