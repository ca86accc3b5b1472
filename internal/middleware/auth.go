package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/token"
)

const principalKey = "principal"

// ErrUnauthorized marks failures raised while authenticating the bearer token.
var ErrUnauthorized = errors.New("unauthorized")

type AccessVerifier interface {
	VerifyAccess(ctx context.Context, accessToken string) (*service.Principal, error)
}

type Auth struct {
	Verifier AccessVerifier
}

func NewAuth(v AccessVerifier) *Auth {
	return &Auth{Verifier: v}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	scheme, tok, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "require_auth")

		p, err := m.Verifier.VerifyAccess(ctx, BearerToken(c.Request()))
		if err != nil {
			l.Warn("auth_failed", "reason", authFailureReason(err))
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}

		c.Set(principalKey, *p)
		return next(c)
	}
}

func RequireRole(required models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return ErrUnauthorized
			}
			if err := service.Authorize(p.Role, required); err != nil {
				logging.FromContext(c.Request().Context()).Warn("role_denied",
					"user_id", p.ID, "role", p.Role, "required", required)
				return err
			}
			return next(c)
		}
	}
}

func PrincipalFrom(c echo.Context) (service.Principal, bool) {
	p, ok := c.Get(principalKey).(service.Principal)
	return p, ok
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenNotPresented):
		return "missing"
	case errors.Is(err, service.ErrWrongTokenKind):
		return "kind"
	case errors.Is(err, service.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, service.ErrUserNotFound):
		return "user"
	default:
		return token.Reason(err)
	}
}
