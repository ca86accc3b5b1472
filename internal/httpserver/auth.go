package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies CookieConfig
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	l.Info("register_successful", "user_id", user.ID)
	return respond(c, http.StatusCreated, "USER_CREATED", "User created successfully", user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.Cookies.RefreshCookie(pair.RefreshToken, pair.RefreshExp))
	l.Info("login_successful")

	return respond(c, http.StatusOK, "USER_LOGIN_SUCCESS", "User logged in successfully", tokenBody(pair))
}

// Refresh rotates the pair. The access token is read from the Authorization
// header without verifying it, since it is usually expired by now.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	pair, err := h.Svc.Rotate(ctx, refreshFromCookie(c), middleware.BearerToken(c.Request()))
	if err != nil {
		return err
	}

	c.SetCookie(h.Cookies.RefreshCookie(pair.RefreshToken, pair.RefreshExp))
	l.Info("refresh_successful")

	return respond(c, http.StatusOK, "TOKEN_REFRESHED", "Access token refreshed successfully", tokenBody(pair))
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if err := h.Svc.Logout(ctx, refreshFromCookie(c), middleware.BearerToken(c.Request())); err != nil {
		return err
	}

	c.SetCookie(h.Cookies.DeleteCookie(RefreshCookieName))
	l.Info("successful_logout")

	return respond(c, http.StatusOK, "USER_LOGOUT_SUCCESS", "User logged out successfully", echo.Map{
		"message": "Successfully logged out",
	})
}

func refreshFromCookie(c echo.Context) string {
	ck, err := c.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func tokenBody(p *service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken: p.AccessToken,
		ExpiresIn:   p.ExpiresIn,
		TokenType:   p.TokenType,
	}
}
