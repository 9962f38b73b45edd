package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/ports"
)

type WalletHandler struct {
	service ports.WalletService
}

func NewWalletHandler(service ports.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// Get handles GET /wallet.
//
// @Summary      Wallet balance and transactions
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  domain.Wallet
// @Failure      401  {object}  map[string]string
// @Router       /wallet [get]
func (h *WalletHandler) Get(c echo.Context) error {
	w, err := h.service.Balance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}
