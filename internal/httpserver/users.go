package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func parseUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

func principal(c echo.Context) (service.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return service.Principal{}, middleware.ErrUnauthorized
	}
	return p, nil
}

// List serves ?page=&size=; the total count goes in X-Total-Count.
func (h *UsersHTTP) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	users, total, err := h.Svc.List(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return respond(c, http.StatusOK, "USER_LIST_RETRIEVED", "User list retrieved successfully", users)
}

func (h *UsersHTTP) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Get(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "USER_PROFILE_RETRIEVED", "User profile retrieved successfully", user)
}

func (h *UsersHTTP) Get(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "USER_RETRIEVED", "User retrieved successfully", user)
}

func (h *UsersHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_update")

	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var in service.UpdateInput
	if err := c.Bind(&in); err != nil {
		l.Warn("update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Update(ctx, p, id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "USER_UPDATED", "User updated successfully", user)
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "USER_DELETED", "User deleted successfully", echo.Map{"id": id})
}
