package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// SessionHandler exposes the gate's decision for the current location.
type SessionHandler struct {
	gate ports.SessionGate
	nav  ports.Navigator
}

func NewSessionHandler(gate ports.SessionGate, nav ports.Navigator) *SessionHandler {
	return &SessionHandler{gate: gate, nav: nav}
}

type navigateRequest struct {
	Path string `json:"path" validate:"required,startswith=/"`
}

type decisionResponse struct {
	State    string           `json:"state"`
	Loading  bool             `json:"loading"`
	Render   bool             `json:"render"`
	Redirect string           `json:"redirect,omitempty"`
	Location string           `json:"location"`
	Session  *sessionResponse `json:"session,omitempty"`
}

func (h *SessionHandler) respond(c echo.Context, d domain.Decision) error {
	resp := decisionResponse{
		State:    d.State.String(),
		Loading:  d.Loading,
		Render:   d.Render(),
		Redirect: d.Redirect,
		Location: h.nav.Location(),
	}
	if s := h.gate.Session(); s.IdentityPresent {
		sr := toSessionResponse(s)
		resp.Session = &sr
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns the latest gate decision.
//
// @Summary      Current session gate decision
// @Tags         session
// @Produce      json
// @Success      200  {object}  decisionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return h.respond(c, h.gate.Decision())
}

// Navigate moves to path and re-runs the gate for the new location. The
// re-run is skipped while a snapshot is being processed.
//
// @Summary      Navigate to a route
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      navigateRequest  true  "Target route"
// @Success      200   {object}  decisionResponse
// @Failure      400   {object}  map[string]string
// @Router       /navigate [post]
func (h *SessionHandler) Navigate(c echo.Context) error {
	var req navigateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.nav.Replace(req.Path)
	d, _ := h.gate.Recheck(c.Request().Context())
	return h.respond(c, d)
}
