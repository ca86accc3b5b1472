package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Logout     bool   `json:"logout,omitempty"`
}

type apiError struct {
	status  int
	code    string
	message string
	logout  bool
}

// classify maps an error to its HTTP form. Token and credential failures are
// reported by kind only; the underlying cause stays in the logs.
func classify(err error) apiError {
	switch {
	case errors.Is(err, service.ErrInvalidRefreshToken):
		if errors.Is(err, service.ErrTokenNotPresented) {
			return apiError{http.StatusUnauthorized, "TOKEN_NOT_FOUND", "Token is missing.", false}
		}
		return apiError{http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token.", false}
	case errors.Is(err, middleware.ErrUnauthorized):
		if errors.Is(err, service.ErrTokenRevoked) {
			return apiError{http.StatusUnauthorized, "TOKEN_REVOKED", "Token has been revoked.", true}
		}
		return apiError{http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized.", false}
	case errors.Is(err, service.ErrTokenNotPresented):
		return apiError{http.StatusUnauthorized, "TOKEN_NOT_FOUND", "Token is missing.", false}
	case errors.Is(err, service.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password.", false}
	case errors.Is(err, service.ErrForbidden):
		return apiError{http.StatusForbidden, "UNAUTHORIZED_OPERATION", "You do not have permission to perform this operation.", false}
	case errors.Is(err, service.ErrDuplicateEmail):
		return apiError{http.StatusConflict, "USER_ALREADY_EXISTS", "User with this email already exists.", false}
	case errors.Is(err, service.ErrUserNotFound):
		return apiError{http.StatusNotFound, "USER_NOT_FOUND", "User not found.", false}
	case errors.Is(err, service.ErrValidation):
		return apiError{http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), false}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return apiError{he.Code, statusCode(he.Code), msg, false}
	}
	return apiError{http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error.", false}
}

func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// NewErrorHandler renders every error in the ErrorBody shape. A revoked access
// token also clears the refresh cookie.
func NewErrorHandler(cookies CookieConfig, now func() time.Time) echo.HTTPErrorHandler {
	if now == nil {
		now = time.Now
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ae := classify(err)
		if ae.status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
		}
		if ae.logout {
			c.SetCookie(cookies.DeleteCookie(RefreshCookieName))
		}

		body := ErrorBody{
			StatusCode: ae.status,
			ErrorCode:  ae.code,
			Message:    ae.message,
			Timestamp:  now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Path:       c.Request().URL.RequestURI(),
			Logout:     ae.logout,
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(ae.status)
		} else {
			werr = c.JSON(ae.status, body)
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
		}
	}
}
