package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/buyme/internal/catalog"
	"github.com/Skotchmaster/buyme/internal/repo"
	"github.com/Skotchmaster/buyme/internal/search"
	"github.com/Skotchmaster/buyme/internal/util"
	"github.com/Skotchmaster/buyme/pkg/logging"
)

type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (search.Result, error)
}

type StorefrontService struct {
	Store repo.Store
	// Index is optional; without it search filters a fresh snapshot.
	Index ProductSearcher
}

// LoadSnapshot reads both collections once. Documents that fail to decode
// are skipped and logged. On a read failure the returned snapshot is empty
// and the error says which collection failed.
func (s *StorefrontService) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	l := logging.FromContext(ctx).With("svc", "storefront.snapshot")

	productDocs, pErr := s.Store.ListProducts(ctx)
	categoryDocs, cErr := s.Store.ListCategories(ctx)
	if err := errors.Join(wrapFetch("products", pErr), wrapFetch("categories", cErr)); err != nil {
		l.Error("fetch_error", "error", err)
		return catalog.NewSnapshot(nil, nil), err
	}

	products := make([]catalog.Product, 0, len(productDocs))
	for _, d := range productDocs {
		p, err := catalog.DecodeProduct(d)
		if err != nil {
			l.Warn("decode_error", "collection", "products", "id", d.ID, "error", err)
			continue
		}
		products = append(products, p)
	}

	categories := make([]catalog.Category, 0, len(categoryDocs))
	for _, d := range categoryDocs {
		c, err := catalog.DecodeCategory(d)
		if err != nil {
			l.Warn("decode_error", "collection", "categories", "id", d.ID, "error", err)
			continue
		}
		categories = append(categories, c)
	}

	return catalog.NewSnapshot(products, categories), nil
}

func wrapFetch(collection string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", collection, err)
}

// View always returns a renderable view; the error only reports that the
// snapshot behind it could not be fetched.
func (s *StorefrontService) View(ctx context.Context, f catalog.Filter) (catalog.View, error) {
	snap, err := s.LoadSnapshot(ctx)
	return catalog.BuildView(snap, f), err
}

// Shelf rebuilds one shelf and replays the visible count the client already
// had, so "load more" stays stateless on the server.
func (s *StorefrontService) Shelf(ctx context.Context, f catalog.Filter, name catalog.ShelfName, visible int) (*catalog.Shelf, []catalog.Category, error) {
	snap, err := s.LoadSnapshot(ctx)
	shelf := catalog.NewShelf(name, catalog.Apply(snap.Products(), f))
	shelf.Restore(visible)
	return shelf, snap.Categories(), err
}

type ProductDetail struct {
	Product       catalog.Product
	CategoryLabel string
}

func (s *StorefrontService) Product(ctx context.Context, id string) (ProductDetail, error) {
	doc, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	p, err := catalog.DecodeProduct(*doc)
	if err != nil {
		return ProductDetail{}, err
	}

	label := catalog.UnknownCategory
	if p.CategoryID != "" {
		c, err := s.Store.GetCategory(ctx, p.CategoryID)
		switch {
		case err == nil:
			label = c.Label
		case !errors.Is(err, repo.ErrNotFound):
			return ProductDetail{}, err
		}
	}
	return ProductDetail{Product: p, CategoryLabel: label}, nil
}

func (s *StorefrontService) Categories(ctx context.Context) ([]catalog.Category, error) {
	snap, err := s.LoadSnapshot(ctx)
	return snap.Categories(), err
}

type SearchResult struct {
	Total int64
	Items []catalog.Product
}

func (s *StorefrontService) Search(ctx context.Context, query string, page, size int) (SearchResult, error) {
	if query == "" {
		return SearchResult{}, fmt.Errorf("%w: query is empty", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		res, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return decodeHits(ctx, res), nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to catalog scan", "error", err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	matched := catalog.Apply(snap.Products(), catalog.Filter{Search: query})
	lo, hi := util.Window(len(matched), offset, limit)
	return SearchResult{Total: int64(len(matched)), Items: matched[lo:hi]}, nil
}

func decodeHits(ctx context.Context, res search.Result) SearchResult {
	out := SearchResult{Total: res.Total, Items: make([]catalog.Product, 0, len(res.Hits))}
	for _, d := range res.Hits {
		p, err := catalog.DecodeProduct(d)
		if err != nil {
			logging.FromContext(ctx).Warn("decode_error", "collection", "search", "id", d.ID, "error", err)
			continue
		}
		out.Items = append(out.Items, p)
	}
	return out
}
