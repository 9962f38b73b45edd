package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// RequireState lets a request through only while the session gate is in one
// of the allowed states. Rejections carry the gate error so the error
// handler can attach the redirect target.
func RequireState(session ports.SessionReader, allowedStates ...domain.GateState) echo.MiddlewareFunc {
	allowed := make(map[domain.GateState]struct{}, len(allowedStates))
	for _, s := range allowedStates {
		allowed[s] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := session.State()
			if _, ok := allowed[state]; ok {
				return next(c)
			}
			switch state {
			case domain.StateLoading:
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session loading")
			case domain.StateUnverified:
				return domain.ErrVerificationRequired
			case domain.StateWrongRole:
				return domain.ErrAuthorizationDenied
			default:
				return domain.ErrAuthenticationRequired
			}
		}
	}
}
