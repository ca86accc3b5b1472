package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/models"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	UsersHandler *UsersHTTP
	AdminHandler *AdminHTTP
	Auth         *middleware.Auth
	Metrics      http.Handler
	Ready        func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	users := e.Group("/users")
	users.POST("", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/refreshToken", d.AuthHandler.Refresh)

	private := users.Group("", d.Auth.RequireAuth)
	private.POST("/logout", d.AuthHandler.LogOut)
	private.GET("", d.UsersHandler.List)
	private.GET("/me", d.UsersHandler.Me)
	private.GET("/:id", d.UsersHandler.Get)
	private.PATCH("/:id", d.UsersHandler.Update)
	private.DELETE("/:id", d.UsersHandler.Delete)

	admin := e.Group("/admin", d.Auth.RequireAuth, middleware.RequireRole(models.RoleAdmin))
	admin.POST("/cleanup-tokens", d.AdminHandler.CleanupTokens)
}
