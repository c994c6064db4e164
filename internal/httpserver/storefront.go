package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/buyme/internal/catalog"
	"github.com/Skotchmaster/buyme/internal/service"
	"github.com/Skotchmaster/buyme/internal/transport"
	"github.com/Skotchmaster/buyme/internal/util"
	"github.com/Skotchmaster/buyme/pkg/logging"
)

type StorefrontHTTP struct {
	Svc *service.StorefrontService
}

// Get renders the storefront for the filter in the query string. A failed
// fetch is not an error for the client: it gets an empty view flagged with
// fetch_error. replace_url tells the client to rewrite its current history
// entry to canonical_url.
func (h *StorefrontHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.get")

	f, err := catalog.DecodeQuery(c.QueryParams())
	if err != nil {
		l.Warn("storefront_error", "status", 400, "reason", "invalid filter", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.Svc.View(ctx, f)
	if err != nil {
		l.Error("storefront_error", "status", 200, "reason", "catalog fetch failed", "error", err)
	}

	requested := catalog.StorefrontPath
	if raw := c.QueryString(); raw != "" {
		requested += "?" + raw
	}
	bar := catalog.NewAddressBar(requested)
	canonical, replaced := bar.Sync(catalog.StorefrontPath, f)

	resp := transport.Storefront(view, err != nil)
	resp.CanonicalURL = canonical
	resp.ReplaceURL = replaced

	hdr := c.Response().Header()
	hdr.Set("Content-Location", canonical)
	if err == nil {
		hdr.Set(echo.HeaderLastModified, view.FetchedAt.Format(http.TimeFormat))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHTTP) Shelf(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.shelf")

	name, err := catalog.ParseShelfName(c.Param("shelf"))
	if err != nil {
		l.Warn("shelf_error", "status", 404, "reason", "unknown shelf", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "unknown shelf")
	}
	f, err := catalog.DecodeQuery(c.QueryParams())
	if err != nil {
		l.Warn("shelf_error", "status", 400, "reason", "invalid filter", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	visible := util.ParseIntDefault(c.QueryParam("visible"), catalog.PageStep)

	shelf, cats, err := h.Svc.Shelf(ctx, f, name, visible)
	if err != nil {
		l.Error("shelf_error", "status", 200, "reason", "catalog fetch failed", "error", err)
	}
	resp := transport.Shelf(shelf, cats)
	resp.FetchError = err != nil
	return c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHTTP) Product(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.product")

	id := c.Param("id")
	detail, err := h.Svc.Product(ctx, id)
	if err != nil {
		var de *catalog.DecodeError
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("get_product_failed", "status", 404, "reason", "product with this id dont exist", "id", id)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.As(err, &de):
			l.Warn("get_product_failed", "status", 404, "reason", "stored product is unreadable", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, transport.Product(detail.Product, detail.CategoryLabel))
}

func (h *StorefrontHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		l.Error("get_categories_failed", "status", 500, "reason", "catalog fetch failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get categories")
	}
	return c.JSON(http.StatusOK, transport.Categories(cats))
}

func (h *StorefrontHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "storefront.search")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.Search(ctx, q, page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "reason", "empty query", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
		}
		l.Error("search_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": transport.Products(res.Items, nil),
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       res.Total,
			"total_pages": (res.Total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < res.Total,
		},
	})
}
