package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/buyme/internal/checkout"
	"github.com/Skotchmaster/buyme/internal/service"
	"github.com/Skotchmaster/buyme/internal/transport"
	"github.com/Skotchmaster/buyme/pkg/logging"
	middleware "github.com/Skotchmaster/buyme/pkg/middleware/auth"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func checkoutError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		l.Warn(event, "status", 404, "reason", "no such checkout", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "checkout not found")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "product not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, checkout.ErrInvalidSize):
		l.Warn(event, "status", 400, "reason", "invalid size", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrNotOpen):
		l.Warn(event, "status", 409, "reason", "checkout closed", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "checkout is closed")
	}
	l.Error(event, "status", 500, "reason", "checkout failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "checkout failed")
}

func (h *CheckoutHTTP) Open(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.open")

	var req transport.OpenCheckoutRequest
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		l.Warn("checkout_open_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	st, err := h.Svc.Open(ctx, req.ProductID)
	if err != nil {
		return checkoutError(l, "checkout_open_error", err)
	}
	return c.JSON(http.StatusCreated, transport.Checkout(st, ""))
}

func (h *CheckoutHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.get")

	st, err := h.Svc.State(c.Param("id"))
	if err != nil {
		return checkoutError(l, "checkout_get_error", err)
	}
	return c.JSON(http.StatusOK, transport.Checkout(st, ""))
}

func (h *CheckoutHTTP) SelectSize(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.size")

	var req transport.SizeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_size_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	st, err := h.Svc.SelectSize(c.Param("id"), req.Size)
	if err != nil {
		return checkoutError(l, "checkout_size_error", err)
	}
	return c.JSON(http.StatusOK, transport.Checkout(st, ""))
}

func (h *CheckoutHTTP) SetQuantity(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.quantity")

	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_quantity_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	st, err := h.Svc.SetQuantity(c.Param("id"), req.Quantity)
	if err != nil {
		return checkoutError(l, "checkout_quantity_error", err)
	}
	return c.JSON(http.StatusOK, transport.Checkout(st, ""))
}

// Submit answers 422 with the modal still open when no size was picked.
func (h *CheckoutHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit")

	rc, st, err := h.Svc.Submit(ctx, c.Param("id"), middleware.UserID(c))
	if errors.Is(err, checkout.ErrSizeRequired) {
		l.Info("checkout_submit_rejected", "status", 422, "reason", "size not selected")
		return c.JSON(http.StatusUnprocessableEntity, transport.Checkout(st, checkout.MsgSizeRequired))
	}
	if err != nil {
		return checkoutError(l, "checkout_submit_error", err)
	}

	l.Info("checkout_submit_success", "product_id", rc.Intent.ProductID, "user_id", rc.Intent.UserID)
	return c.JSON(http.StatusOK, transport.Checkout(st, rc.Message))
}

func (h *CheckoutHTTP) Cancel(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.cancel")

	if err := h.Svc.Cancel(c.Param("id")); err != nil {
		return checkoutError(l, "checkout_cancel_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
