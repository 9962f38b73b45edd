package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error    string   `json:"error"`
	Fields   []string `json:"fields,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: ve.Msg, Fields: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired), errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrAuthenticationRequired.Error(), Redirect: domain.RouteLogin}
	case errors.Is(err, domain.ErrVerificationRequired):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Redirect: domain.RouteVerifyEmail}
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusForbidden, errorResponse{Error: "Access denied: Only merchants can log in."}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest, errorResponse{Error: domain.ErrInvalidCode.Error()}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrWizardCompleted):
		return http.StatusConflict, errorResponse{Error: domain.ErrWizardCompleted.Error()}
	case errors.Is(err, domain.ErrWizardClosed):
		return http.StatusGone, errorResponse{Error: domain.ErrWizardClosed.Error()}
	case errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, domain.ErrStepNotAcknowledged),
		errors.Is(err, domain.ErrDuplicateCategory),
		errors.Is(err, domain.ErrAcceptInFlight):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, errorResponse{Error: "order not found"}
	case errors.Is(err, domain.ErrGeocodeFailed):
		return http.StatusUnprocessableEntity, errorResponse{Error: domain.ErrGeocodeFailed.Error()}
	case errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway, errorResponse{Error: domain.ErrMalformedResponse.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "upstream timeout"}
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = domain.ErrNetwork.Error()
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, errorResponse{Error: msg}
		}
		return http.StatusBadGateway, errorResponse{Error: msg}
	}
	if errors.Is(err, domain.ErrNetwork) {
		return http.StatusBadGateway, errorResponse{Error: domain.ErrNetwork.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
