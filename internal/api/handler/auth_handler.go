package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role,omitempty"`
}

type verificationResponse struct {
	Sent bool `json:"sent"`
	// Code is returned for local development where no mailer is configured.
	Code string `json:"code,omitempty"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		UserID:        s.UserID,
		Email:         s.Email,
		EmailVerified: s.EmailVerified,
		Role:          s.Role,
	}
}

// Login signs in with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// Logout signs the merchant out.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResendVerification issues a new email verification code.
//
// @Summary      Resend verification email
// @Tags         auth
// @Produce      json
// @Success      200  {object}  verificationResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/verify/resend [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	code, err := h.authService.ResendVerification(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verificationResponse{Sent: true, Code: code})
}

// CheckVerification reloads the identity and reports whether the email is
// verified yet.
//
// @Summary      Check email verification
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/verify/check [post]
func (h *AuthHandler) CheckVerification(c echo.Context) error {
	sess, err := h.authService.CheckVerification(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// ConfirmVerification redeems a verification code.
//
// @Summary      Confirm email verification
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      confirmRequest  true  "Verification code"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify/confirm [post]
func (h *AuthHandler) ConfirmVerification(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sess, err := h.authService.ConfirmVerification(c.Request().Context(), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}
