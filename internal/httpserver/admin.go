package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/buyme/internal/service"
	"github.com/Skotchmaster/buyme/internal/transport"
	"github.com/Skotchmaster/buyme/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func adminError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid input", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "already exists", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "already exists")
	}
	l.Error(event, "status", 500, "reason", "store failure", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return adminError(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, transport.Dashboard(d))
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_products")

	items, err := h.Svc.ListProducts(ctx)
	if err != nil {
		return adminError(l, "list_products_error", err)
	}
	out := make([]transport.ProductResponse, 0, len(items))
	for _, it := range items {
		out = append(out, transport.ProductDoc(it.Doc, it.CategoryLabel))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	doc, err := h.Svc.CreateProduct(ctx, req.Input())
	if err != nil {
		return adminError(l, "product_create_error", err)
	}
	l.Info("create_product_success", "id", doc.ID)
	return c.JSON(http.StatusCreated, transport.ProductDoc(*doc, ""))
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	doc, err := h.Svc.UpdateProduct(ctx, c.Param("id"), req.Input())
	if err != nil {
		return adminError(l, "product_update_error", err)
	}
	l.Info("update_product_success", "id", doc.ID)
	return c.JSON(http.StatusOK, transport.ProductDoc(*doc, ""))
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	if err := h.Svc.DeleteProduct(ctx, c.Param("id")); err != nil {
		return adminError(l, "product_delete_error", err)
	}
	l.Info("delete_product_success", "id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_categories")

	docs, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return adminError(l, "list_categories_error", err)
	}
	out := make([]transport.CategoryResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, transport.CategoryResponse{ID: d.ID, Label: d.Label})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	doc, err := h.Svc.CreateCategory(ctx, req.Label)
	if err != nil {
		return adminError(l, "category_create_error", err)
	}
	return c.JSON(http.StatusCreated, transport.CategoryResponse{ID: doc.ID, Label: doc.Label})
}

func (h *AdminHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	doc, err := h.Svc.UpdateCategory(ctx, c.Param("id"), req.Label)
	if err != nil {
		return adminError(l, "category_update_error", err)
	}
	return c.JSON(http.StatusOK, transport.CategoryResponse{ID: doc.ID, Label: doc.Label})
}

func (h *AdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_category")

	if err := h.Svc.DeleteCategory(ctx, c.Param("id")); err != nil {
		return adminError(l, "category_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_customers")

	users, err := h.Svc.ListCustomers(ctx)
	if err != nil {
		return adminError(l, "list_customers_error", err)
	}
	return c.JSON(http.StatusOK, transport.Users(users))
}

func (h *AdminHTTP) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_customer")

	var req transport.CustomerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("customer_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.CreateCustomer(ctx, req.Input())
	if err != nil {
		return adminError(l, "customer_create_error", err)
	}
	return c.JSON(http.StatusCreated, transport.User(u))
}

func (h *AdminHTTP) UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_customer")

	var req transport.CustomerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("customer_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.UpdateCustomer(ctx, c.Param("id"), req.Input())
	if err != nil {
		return adminError(l, "customer_update_error", err)
	}
	return c.JSON(http.StatusOK, transport.User(u))
}

func (h *AdminHTTP) DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_customer")

	if err := h.Svc.DeleteCustomer(ctx, c.Param("id")); err != nil {
		return adminError(l, "customer_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.upload_image")

	fh, err := c.FormFile("image")
	if err != nil {
		l.Warn("image_upload_error", "status", 400, "reason", "missing image field", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	f, err := fh.Open()
	if err != nil {
		l.Error("image_upload_error", "status", 500, "reason", "cannot open upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read upload")
	}
	defer f.Close()

	ref, err := h.Svc.UploadImage(ctx, fh.Filename, f)
	if err != nil {
		return adminError(l, "image_upload_error", err)
	}
	return c.JSON(http.StatusCreated, transport.ImageResponse{ImageURL: ref})
}
