package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/buyme/internal/models"
)

type GormRepo struct{ DB *gorm.DB }

func NewGormRepo(db *gorm.DB) *GormRepo { return &GormRepo{DB: db} }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ProductDoc{},
		&models.CategoryDoc{},
		&models.UserDoc{},
		&models.Credential{},
	)
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.ProductDoc, error) {
	return list[models.ProductDoc](ctx, r.DB)
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.ProductDoc, error) {
	return get[models.ProductDoc](ctx, r.DB, id)
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.ProductDoc) error {
	stamp(&p.ID, &p.CreatedAt)
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.ProductDoc) error {
	return update(ctx, r.DB, p.ID, p)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	return remove[models.ProductDoc](ctx, r.DB, id)
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.CategoryDoc, error) {
	return list[models.CategoryDoc](ctx, r.DB)
}

func (r *GormRepo) GetCategory(ctx context.Context, id string) (*models.CategoryDoc, error) {
	return get[models.CategoryDoc](ctx, r.DB, id)
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.CategoryDoc) error {
	stamp(&c.ID, &c.CreatedAt)
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) UpdateCategory(ctx context.Context, c *models.CategoryDoc) error {
	return update(ctx, r.DB, c.ID, c)
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id string) error {
	return remove[models.CategoryDoc](ctx, r.DB, id)
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.UserDoc, error) {
	return list[models.UserDoc](ctx, r.DB)
}

func (r *GormRepo) GetUser(ctx context.Context, id string) (*models.UserDoc, error) {
	return get[models.UserDoc](ctx, r.DB, id)
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.UserDoc) error {
	stamp(&u.ID, &u.CreatedAt)
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UpdateUser(ctx context.Context, u *models.UserDoc) error {
	return update(ctx, r.DB, u.ID, u)
}

func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	return remove[models.UserDoc](ctx, r.DB, id)
}

func (r *GormRepo) CreateCredential(ctx context.Context, c *models.Credential) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	stamp(&c.Subject, &c.CreatedAt)

	tx := r.DB.WithContext(ctx).Where("email = ?", c.Email).FirstOrCreate(c)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *GormRepo) FindCredential(ctx context.Context, email string) (*models.Credential, error) {
	var c models.Credential
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormRepo) DeleteCredentialBySubject(ctx context.Context, subject string) error {
	return r.DB.WithContext(ctx).Where("subject = ?", subject).Delete(&models.Credential{}).Error
}

func list[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	items := make([]T, 0)
	if err := db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func get[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var item T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// update overwrites every column except the id and the creation time.
func update[T any](ctx context.Context, db *gorm.DB, id string, item *T) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
		Select("*").Omit("id", "created_at").Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func remove[T any](ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
