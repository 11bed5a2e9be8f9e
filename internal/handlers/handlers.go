package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/okoshkin/storefront/internal/authz"
	"github.com/okoshkin/storefront/internal/domain"
)

// errorResponse renders a storefront error as JSON. Domain errors carry
// their own code and user-facing message; anything else is passed
// through (echo errors) or hidden behind a 500.
func errorResponse(c echo.Context, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return c.JSON(statusFor(de), echo.Map{
			"error":   de.Code,
			"message": de.Message,
		})
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func statusFor(de *domain.DomainError) int {
	switch de.Code {
	case domain.ErrNotFound.Code:
		return http.StatusNotFound
	case domain.ErrForbidden.Code:
		return http.StatusForbidden
	case domain.ErrUnauthorized.Code:
		return http.StatusUnauthorized
	case domain.ErrInsufficientStock.Code, domain.ErrAlreadyExists.Code:
		return http.StatusConflict
	default:
		// invalid quantity, empty order, no active order, invalid input
		return http.StatusBadRequest
	}
}

// requireActor pulls the authenticated actor out of the echo context.
// The auth middleware must have run on this route.
func requireActor(c echo.Context) (authz.Actor, error) {
	actor, ok := authz.FromContext(c)
	if !ok {
		return authz.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return actor, nil
}
