package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/buyme/internal/service"
	"github.com/Skotchmaster/buyme/internal/transport"
	"github.com/Skotchmaster/buyme/pkg/logging"
	middleware "github.com/Skotchmaster/buyme/pkg/middleware/auth"
)

type StaffHTTP struct {
	Auth       *service.AuthService
	Storefront *service.StorefrontService
}

// Dashboard only runs behind the staff redirect guard.
func (h *StaffHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "staff.dashboard")

	user, err := h.Auth.CurrentUser(ctx, middleware.UserID(c))
	if err != nil {
		l.Error("staff_dashboard_error", "status", 500, "reason", "cannot load user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}

	snap, err := h.Storefront.LoadSnapshot(ctx)
	if err != nil {
		l.Error("staff_dashboard_error", "status", 200, "reason", "catalog fetch failed", "error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":             transport.User(user),
		"total_products":   snap.Len(),
		"total_categories": len(snap.Categories()),
		"fetch_error":      err != nil,
	})
}
