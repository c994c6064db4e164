package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/buyme/internal/service"
	"github.com/Skotchmaster/buyme/internal/transport"
	"github.com/Skotchmaster/buyme/pkg/logging"
	middleware "github.com/Skotchmaster/buyme/pkg/middleware/auth"
)

const (
	MsgInvalidCredentials = "Invalid email or password. Please try again."
	MsgUnknownRole        = "Unknown user role. Please contact support."
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_up")

	var req transport.SignUpRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("sign_up_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("sign_up_error", "status", 400, "reason", "invalid input", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("sign_up_error", "status", 409, "reason", "email already registered")
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("sign_up_error", "status", 500, "reason", "cannot create account", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create account")
	}

	l.Info("sign_up_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.User(user))
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_in")

	var req transport.SignInRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("sign_in_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("sign_in_error", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
		case errors.Is(err, service.ErrNoAccess):
			l.Warn("sign_in_error", "status", 403, "reason", "unknown role")
			return echo.NewHTTPError(http.StatusForbidden, MsgUnknownRole)
		}
		l.Error("sign_in_error", "status", 500, "reason", "cannot sign in", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign in")
	}

	c.SetCookie(middleware.CreateCookie(sess.Token, sess.ExpiresAt))
	l.Info("sign_in_success", "user_id", sess.User.ID, "role", sess.User.Role)
	return c.JSON(http.StatusOK, transport.SignInResponse{
		User:        transport.User(sess.User),
		Destination: sess.Destination,
		ExpiresAt:   sess.ExpiresAt,
	})
}

func (h *AuthHTTP) SignOut(c echo.Context) error {
	c.SetCookie(middleware.DeleteCookie())
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	user, err := h.Svc.CurrentUser(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("me_error", "status", 401, "reason", "session user no longer exists")
			c.SetCookie(middleware.DeleteCookie())
			return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
		}
		l.Error("me_error", "status", 500, "reason", "cannot load user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, transport.User(user))
}
