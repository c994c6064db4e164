package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/Skotchmaster/buyme/internal/account"
	"github.com/Skotchmaster/buyme/internal/catalog"
	"github.com/Skotchmaster/buyme/internal/media"
	"github.com/Skotchmaster/buyme/internal/models"
	"github.com/Skotchmaster/buyme/internal/repo"
	"github.com/Skotchmaster/buyme/pkg/logging"
)

const (
	indexTimeout     = 5 * time.Second
	dashboardRecents = 5
)

type ProductIndexer interface {
	IndexProduct(ctx context.Context, p models.ProductDoc) error
	DeleteProduct(ctx context.Context, id string) error
}

type AdminService struct {
	Store  repo.Store
	Events EventPublisher
	Index  ProductIndexer
	Images media.Store
}

type ProductInput struct {
	Name          string
	Description   string
	Price         string
	ImageURL      string
	CategoryID    string
	IsNew         bool
	IsBestselling bool
	IsAccessory   bool
	IsPromotion   bool
}

func (in ProductInput) doc() (models.ProductDoc, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.ProductDoc{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	price, err := catalog.ParsePrice(in.Price)
	if err != nil {
		return models.ProductDoc{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !price.Equal(price.Round(2)) {
		return models.ProductDoc{}, fmt.Errorf("%w: price has more than 2 decimal places", ErrValidation)
	}
	return models.ProductDoc{
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		Price:         price.String(),
		ImageURL:      in.ImageURL,
		CategoryID:    strings.TrimSpace(in.CategoryID),
		IsNew:         in.IsNew,
		IsBestselling: in.IsBestselling,
		IsAccessory:   in.IsAccessory,
		IsPromotion:   in.IsPromotion,
	}, nil
}

// AdminProduct is a stored product as the console lists it: the raw
// document, so rows with an unreadable price can still be fixed.
type AdminProduct struct {
	Doc           models.ProductDoc
	CategoryLabel string
}

func (s *AdminService) ListProducts(ctx context.Context) ([]AdminProduct, error) {
	docs, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	catDocs, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	cats := make([]catalog.Category, 0, len(catDocs))
	for _, d := range catDocs {
		cats = append(cats, catalog.Category{ID: d.ID, Label: d.Label})
	}

	out := make([]AdminProduct, 0, len(docs))
	for _, d := range docs {
		out = append(out, AdminProduct{Doc: d, CategoryLabel: catalog.CategoryLabel(cats, d.CategoryID)})
	}
	return out, nil
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (*models.ProductDoc, error) {
	doc, err := in.doc()
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreateProduct(ctx, &doc); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, doc)
	publish(ctx, s.Events, TopicProducts, doc.ID, map[string]any{
		"type":      "product_created",
		"productID": doc.ID,
		"name":      doc.Name,
		"price":     doc.Price,
	})
	return &doc, nil
}

// UpdateProduct replaces the whole document. Concurrent edits are last
// write wins.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.ProductDoc, error) {
	doc, err := in.doc()
	if err != nil {
		return nil, err
	}
	doc.ID = id
	if err := s.Store.UpdateProduct(ctx, &doc); err != nil {
		return nil, err
	}
	stored, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.indexProduct(ctx, *stored)
	publish(ctx, s.Events, TopicProducts, id, map[string]any{
		"type":      "product_updated",
		"productID": id,
		"name":      stored.Name,
		"price":     stored.Price,
	})
	return stored, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, indexTimeout)
		defer cancel()
		if err := s.Index.DeleteProduct(ictx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "op", "delete", "id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicProducts, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *AdminService) indexProduct(ctx context.Context, doc models.ProductDoc) {
	if s.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if err := s.Index.IndexProduct(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "op", "index", "id", doc.ID, "error", err)
	}
}

func (s *AdminService) ListCategories(ctx context.Context) ([]models.CategoryDoc, error) {
	return s.Store.ListCategories(ctx)
}

func categoryLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("%w: type is required", ErrValidation)
	}
	return label, nil
}

func (s *AdminService) CreateCategory(ctx context.Context, label string) (*models.CategoryDoc, error) {
	label, err := categoryLabel(label)
	if err != nil {
		return nil, err
	}
	doc := models.CategoryDoc{Label: label}
	if err := s.Store.CreateCategory(ctx, &doc); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, TopicCategories, doc.ID, map[string]any{
		"type":       "category_created",
		"categoryID": doc.ID,
		"label":      doc.Label,
	})
	return &doc, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id, label string) (*models.CategoryDoc, error) {
	label, err := categoryLabel(label)
	if err != nil {
		return nil, err
	}
	if err := s.Store.UpdateCategory(ctx, &models.CategoryDoc{ID: id, Label: label}); err != nil {
		return nil, err
	}
	stored, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, TopicCategories, id, map[string]any{
		"type":       "category_updated",
		"categoryID": id,
		"label":      stored.Label,
	})
	return stored, nil
}

// DeleteCategory leaves products pointing at it alone; they read as
// "Unknown" from then on.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.Store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.Events, TopicCategories, id, map[string]any{
		"type":       "category_deleted",
		"categoryID": id,
	})
	return nil
}

type UserInput struct {
	Name  string
	Email string
	Role  string
}

func (in UserInput) doc() (models.UserDoc, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.UserDoc{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return models.UserDoc{}, err
	}
	role, ok := account.ParseRole(in.Role)
	if !ok {
		return models.UserDoc{}, fmt.Errorf("%w: role must be admin, staff or customer", ErrValidation)
	}
	return models.UserDoc{Name: name, Email: email, Role: string(role)}, nil
}

func normalizeEmail(s string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	return strings.ToLower(addr.Address), nil
}

func (s *AdminService) ListCustomers(ctx context.Context) ([]account.User, error) {
	docs, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]account.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, account.DecodeUser(d))
	}
	return out, nil
}

func (s *AdminService) CreateCustomer(ctx context.Context, in UserInput) (account.User, error) {
	doc, err := in.doc()
	if err != nil {
		return account.User{}, err
	}
	if err := s.Store.CreateUser(ctx, &doc); err != nil {
		return account.User{}, err
	}
	publish(ctx, s.Events, TopicUsers, doc.ID, map[string]any{
		"type":   "user_created",
		"userID": doc.ID,
		"role":   doc.Role,
	})
	return account.DecodeUser(doc), nil
}

func (s *AdminService) UpdateCustomer(ctx context.Context, id string, in UserInput) (account.User, error) {
	doc, err := in.doc()
	if err != nil {
		return account.User{}, err
	}
	doc.ID = id
	if err := s.Store.UpdateUser(ctx, &doc); err != nil {
		return account.User{}, err
	}
	stored, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return account.User{}, err
	}
	publish(ctx, s.Events, TopicUsers, id, map[string]any{
		"type":   "user_updated",
		"userID": id,
		"role":   stored.Role,
	})
	return account.DecodeUser(*stored), nil
}

// DeleteCustomer also drops the sign-in credential so the account cannot
// sign in again.
func (s *AdminService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.Store.DeleteUser(ctx, id); err != nil {
		return err
	}
	if err := s.Store.DeleteCredentialBySubject(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("credential_delete_error", "user_id", id, "error", err)
	}
	publish(ctx, s.Events, TopicUsers, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}

type Dashboard struct {
	TotalUsers      int
	TotalProducts   int
	TotalCategories int
	RecentUsers     []account.User
}

func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	users, err := s.ListCustomers(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	cats, err := s.Store.ListCategories(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	recent := slices.Clone(users)
	slices.Reverse(recent)
	return Dashboard{
		TotalUsers:      len(users),
		TotalProducts:   len(products),
		TotalCategories: len(cats),
		RecentUsers:     recent[:min(dashboardRecents, len(recent))],
	}, nil
}

func (s *AdminService) UploadImage(ctx context.Context, name string, r io.Reader) (string, error) {
	store := s.Images
	if store == nil {
		store = media.DataURIStore{}
	}
	ref, err := store.Put(ctx, name, r)
	if errors.Is(err, media.ErrNotImage) || errors.Is(err, media.ErrTooLarge) {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return ref, err
}
