package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/ports"
)

// LocationHandler backs the city and barangay pickers.
type LocationHandler struct {
	service ports.LocationService
}

func NewLocationHandler(service ports.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

type divisionsResponse struct {
	Items []ports.Division `json:"items"`
}

// Cities handles GET /locations/cities.
//
// @Summary      Cities in the configured region
// @Tags         locations
// @Produce      json
// @Success      200  {object}  divisionsResponse
// @Failure      502  {object}  map[string]string
// @Router       /locations/cities [get]
func (h *LocationHandler) Cities(c echo.Context) error {
	items, err := h.service.Cities(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, divisionsResponse{Items: items})
}

// Barangays handles GET /locations/cities/:code/barangays.
//
// @Summary      Barangays of a city
// @Tags         locations
// @Produce      json
// @Param        code  path      string  true  "PSGC city code"
// @Success      200   {object}  divisionsResponse
// @Failure      502   {object}  map[string]string
// @Router       /locations/cities/{code}/barangays [get]
func (h *LocationHandler) Barangays(c echo.Context) error {
	items, err := h.service.Barangays(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, divisionsResponse{Items: items})
}

// Geocode handles GET /locations/geocode?address=.
//
// @Summary      Resolve an address to coordinates
// @Tags         locations
// @Produce      json
// @Param        address  query     string  true  "Street address"
// @Success      200      {object}  map[string]float64
// @Failure      422      {object}  map[string]string
// @Router       /locations/geocode [get]
func (h *LocationHandler) Geocode(c echo.Context) error {
	coords, err := h.service.Resolve(c.Request().Context(), c.QueryParam("address"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, coords)
}
