package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/buyme/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Store is the document store the storefront reads from and the admin
// console writes to. Lists come back in creation order.
type Store interface {
	ListProducts(ctx context.Context) ([]models.ProductDoc, error)
	GetProduct(ctx context.Context, id string) (*models.ProductDoc, error)
	CreateProduct(ctx context.Context, p *models.ProductDoc) error
	UpdateProduct(ctx context.Context, p *models.ProductDoc) error
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]models.CategoryDoc, error)
	GetCategory(ctx context.Context, id string) (*models.CategoryDoc, error)
	CreateCategory(ctx context.Context, c *models.CategoryDoc) error
	UpdateCategory(ctx context.Context, c *models.CategoryDoc) error
	DeleteCategory(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]models.UserDoc, error)
	GetUser(ctx context.Context, id string) (*models.UserDoc, error)
	CreateUser(ctx context.Context, u *models.UserDoc) error
	UpdateUser(ctx context.Context, u *models.UserDoc) error
	DeleteUser(ctx context.Context, id string) error

	CreateCredential(ctx context.Context, c *models.Credential) error
	FindCredential(ctx context.Context, email string) (*models.Credential, error)
	DeleteCredentialBySubject(ctx context.Context, subject string) error

	Ping(ctx context.Context) error
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

var (
	_ Store = (*GormRepo)(nil)
	_ Store = (*MongoRepo)(nil)
)
