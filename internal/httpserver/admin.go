package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/service"
)

type AdminHTTP struct {
	Svc *service.AuthService
}

func (h *AdminHTTP) CleanupTokens(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	n, err := h.Svc.Cleanup(c.Request().Context(), p)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "TOKEN_CLEANUP_SUCCESS", "Expired tokens deleted successfully", echo.Map{
		"message":      "Expired tokens deleted",
		"deletedCount": n,
	})
}
