package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// OrderHandler serves the incoming and accepted order screens.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// Incoming handles GET /orders/incoming.
//
// @Summary      Pending orders, newest first
// @Tags         orders
// @Produce      json
// @Success      200  {object}  ordersResponse
// @Failure      401  {object}  map[string]string
// @Router       /orders/incoming [get]
func (h *OrderHandler) Incoming(c echo.Context) error {
	orders, err := h.service.Incoming(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// Accepted handles GET /orders/accepted.
//
// @Summary      Accepted orders, newest first
// @Tags         orders
// @Produce      json
// @Success      200  {object}  ordersResponse
// @Router       /orders/accepted [get]
func (h *OrderHandler) Accepted(c echo.Context) error {
	orders, err := h.service.Accepted(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// Remote handles GET /orders/remote.
//
// @Summary      Merchant orders from the REST backend
// @Tags         orders
// @Produce      json
// @Success      200  {object}  ordersResponse
// @Failure      502  {object}  map[string]string
// @Router       /orders/remote [get]
func (h *OrderHandler) Remote(c echo.Context) error {
	orders, err := h.service.FromBackend(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// Accept handles POST /orders/:id/accept.
//
// @Summary      Accept an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  domain.AcceptResult
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /orders/{id}/accept [post]
func (h *OrderHandler) Accept(c echo.Context) error {
	res, err := h.service.Accept(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
