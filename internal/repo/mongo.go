package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Skotchmaster/buyme/internal/models"
)

const (
	collProducts    = "products"
	collCategories  = "categories"
	collUsers       = "users"
	collCredentials = "credentials"
)

type MongoRepo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongoRepo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	r := &MongoRepo{Client: client, DB: client.Database(database)}
	if err := r.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *MongoRepo) ensureIndexes(ctx context.Context) error {
	_, err := r.DB.Collection(collCredentials).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subject", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create credentials index: %w", err)
	}
	for _, name := range []string{collProducts, collCategories, collUsers} {
		_, err := r.DB.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("create %s index: %w", name, err)
		}
	}
	return nil
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.Client.Disconnect(ctx)
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepo) ListProducts(ctx context.Context) ([]models.ProductDoc, error) {
	return findAll[models.ProductDoc](ctx, r.DB.Collection(collProducts))
}

func (r *MongoRepo) GetProduct(ctx context.Context, id string) (*models.ProductDoc, error) {
	return findOne[models.ProductDoc](ctx, r.DB.Collection(collProducts), id)
}

func (r *MongoRepo) CreateProduct(ctx context.Context, p *models.ProductDoc) error {
	stamp(&p.ID, &p.CreatedAt)
	return insert(ctx, r.DB.Collection(collProducts), p)
}

func (r *MongoRepo) UpdateProduct(ctx context.Context, p *models.ProductDoc) error {
	return replace(ctx, r.DB.Collection(collProducts), p.ID, bson.M{
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price,
		"imageUrl":      p.ImageURL,
		"categoryId":    p.CategoryID,
		"isnew":         p.IsNew,
		"isBestselling": p.IsBestselling,
		"isAccessories": p.IsAccessory,
		"isPromotion":   p.IsPromotion,
	})
}

func (r *MongoRepo) DeleteProduct(ctx context.Context, id string) error {
	return deleteOne(ctx, r.DB.Collection(collProducts), id)
}

func (r *MongoRepo) ListCategories(ctx context.Context) ([]models.CategoryDoc, error) {
	return findAll[models.CategoryDoc](ctx, r.DB.Collection(collCategories))
}

func (r *MongoRepo) GetCategory(ctx context.Context, id string) (*models.CategoryDoc, error) {
	return findOne[models.CategoryDoc](ctx, r.DB.Collection(collCategories), id)
}

func (r *MongoRepo) CreateCategory(ctx context.Context, c *models.CategoryDoc) error {
	stamp(&c.ID, &c.CreatedAt)
	return insert(ctx, r.DB.Collection(collCategories), c)
}

func (r *MongoRepo) UpdateCategory(ctx context.Context, c *models.CategoryDoc) error {
	return replace(ctx, r.DB.Collection(collCategories), c.ID, bson.M{"type": c.Label})
}

func (r *MongoRepo) DeleteCategory(ctx context.Context, id string) error {
	return deleteOne(ctx, r.DB.Collection(collCategories), id)
}

func (r *MongoRepo) ListUsers(ctx context.Context) ([]models.UserDoc, error) {
	return findAll[models.UserDoc](ctx, r.DB.Collection(collUsers))
}

func (r *MongoRepo) GetUser(ctx context.Context, id string) (*models.UserDoc, error) {
	return findOne[models.UserDoc](ctx, r.DB.Collection(collUsers), id)
}

func (r *MongoRepo) CreateUser(ctx context.Context, u *models.UserDoc) error {
	stamp(&u.ID, &u.CreatedAt)
	return insert(ctx, r.DB.Collection(collUsers), u)
}

func (r *MongoRepo) UpdateUser(ctx context.Context, u *models.UserDoc) error {
	return replace(ctx, r.DB.Collection(collUsers), u.ID, bson.M{
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	})
}

func (r *MongoRepo) DeleteUser(ctx context.Context, id string) error {
	return deleteOne(ctx, r.DB.Collection(collUsers), id)
}

// Credentials are keyed by email, so a second sign-up with the same address
// hits the _id index and surfaces as ErrConflict.
func (r *MongoRepo) CreateCredential(ctx context.Context, c *models.Credential) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	stamp(&c.Subject, &c.CreatedAt)
	return insert(ctx, r.DB.Collection(collCredentials), c)
}

func (r *MongoRepo) FindCredential(ctx context.Context, email string) (*models.Credential, error) {
	return findOne[models.Credential](ctx, r.DB.Collection(collCredentials), strings.ToLower(strings.TrimSpace(email)))
}

func (r *MongoRepo) DeleteCredentialBySubject(ctx context.Context, subject string) error {
	_, err := r.DB.Collection(collCredentials).DeleteOne(ctx, bson.M{"subject": subject})
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var item T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, id string, fields bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
