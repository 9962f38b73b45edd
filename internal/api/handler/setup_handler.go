package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/service"
)

// SetupScreen hands out the wizard for the current visit to the setup route.
type SetupScreen interface {
	Open(ctx context.Context) (*service.Wizard, error)
}

// SetupHandler drives the business-setup wizard.
type SetupHandler struct {
	screen SetupScreen
}

func NewSetupHandler(screen SetupScreen) *SetupHandler {
	return &SetupHandler{screen: screen}
}

type businessInfoRequest struct {
	BusinessName      string `json:"businessName"`
	ExactAddress      string `json:"exactAddress"`
	Barangay          string `json:"barangay"`
	City              string `json:"city"`
	PhoneNumber       string `json:"phoneNumber"`
	Open              string `json:"open"`
	Close             string `json:"close"`
	OrderTypeDelivery bool   `json:"orderTypeDelivery"`
	// Image is the base64-encoded logo.
	Image            []byte `json:"image,omitempty" swaggertype:"string" format:"base64"`
	ImageContentType string `json:"imageContentType,omitempty"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type setupResponse struct {
	Step       string              `json:"step"`
	State      domain.WizardState  `json:"state"`
	Categories []string            `json:"categories"`
	Summary    domain.SetupSummary `json:"summary"`
}

func setupView(w *service.Wizard) setupResponse {
	st := w.State()
	return setupResponse{
		Step:       st.CurrentStep.String(),
		State:      st,
		Categories: w.Categories(),
		Summary:    w.Summary(),
	}
}

func (h *SetupHandler) wizard(c echo.Context) (*service.Wizard, error) {
	return h.screen.Open(c.Request().Context())
}

// Get returns the wizard progress, or the read-only summary once setup is
// complete.
//
// @Summary      Business setup progress
// @Tags         setup
// @Produce      json
// @Success      200  {object}  setupResponse
// @Failure      401  {object}  map[string]string
// @Router       /setup [get]
func (h *SetupHandler) Get(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupView(w))
}

// SubmitInfo saves the business profile.
//
// @Summary      Submit business info
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        body  body      businessInfoRequest  true  "Business profile"
// @Success      200   {object}  setupResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /setup/info [post]
func (h *SetupHandler) SubmitInfo(c echo.Context) error {
	var req businessInfoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	w, err := h.wizard(c)
	if err != nil {
		return err
	}

	err = w.SubmitInfo(c.Request().Context(), service.BusinessInfoInput{
		BusinessName:      req.BusinessName,
		ExactAddress:      req.ExactAddress,
		Barangay:          req.Barangay,
		City:              req.City,
		PhoneNumber:       req.PhoneNumber,
		Open:              req.Open,
		Close:             req.Close,
		OrderTypeDelivery: req.OrderTypeDelivery,
		Image:             req.Image,
		ImageContentType:  req.ImageContentType,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupView(w))
}

// AddCategory appends a custom category to the local list.
//
// @Summary      Add a custom category
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        body  body      categoryRequest  true  "Category name"
// @Success      200   {object}  setupResponse
// @Failure      409   {object}  map[string]string
// @Router       /setup/categories [post]
func (h *SetupHandler) AddCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.AddCategory(c.Request().Context(), req.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupView(w))
}

// SaveCategories persists the default categories and advances.
//
// @Summary      Save categories
// @Tags         setup
// @Produce      json
// @Success      200  {object}  service.CategoryBatchResult
// @Failure      409  {object}  map[string]string
// @Router       /setup/categories/save [post]
func (h *SetupHandler) SaveCategories(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	res, err := w.SaveCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// AddProduct creates one product.
//
// @Summary      Add a product
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        body  body      service.ProductInput  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Router       /setup/products [post]
func (h *SetupHandler) AddProduct(c echo.Context) error {
	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	p, err := w.AddProduct(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// FinishProducts closes the products step.
//
// @Summary      Finish adding products
// @Tags         setup
// @Produce      json
// @Success      200  {object}  setupResponse
// @Failure      409  {object}  map[string]string
// @Router       /setup/products/done [post]
func (h *SetupHandler) FinishProducts(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.FinishProducts(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupView(w))
}

// ProductOptions lists the detergent and fabric conditioner choices for the
// service defaults.
//
// @Summary      Service default options
// @Tags         setup
// @Produce      json
// @Success      200  {object}  service.ProductOptions
// @Router       /setup/products/options [get]
func (h *SetupHandler) ProductOptions(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	opts, err := w.ProductOptions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opts)
}

// SaveService stores one service card. The path name wins over the body.
//
// @Summary      Save a service
// @Tags         setup
// @Accept       json
// @Produce      json
// @Param        name  path      string                true  "Regular or Premium"
// @Param        body  body      service.ServiceInput  true  "Service"
// @Success      200   {object}  domain.Service
// @Failure      400   {object}  map[string]string
// @Router       /setup/services/{name} [put]
func (h *SetupHandler) SaveService(c echo.Context) error {
	var req service.ServiceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = c.Param("name")

	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	svc, err := w.SaveService(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, svc)
}

// Finish completes the wizard.
//
// @Summary      Finish business setup
// @Tags         setup
// @Produce      json
// @Success      200  {object}  setupResponse
// @Failure      409  {object}  map[string]string
// @Router       /setup/finish [post]
func (h *SetupHandler) Finish(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.Finish(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setupView(w))
}
