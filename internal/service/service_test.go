package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/buyme/internal/account"
	"github.com/Skotchmaster/buyme/internal/catalog"
	"github.com/Skotchmaster/buyme/internal/checkout"
	"github.com/Skotchmaster/buyme/internal/models"
	"github.com/Skotchmaster/buyme/internal/repo"
	"github.com/Skotchmaster/buyme/internal/search"
	"github.com/Skotchmaster/buyme/pkg/db"
	"github.com/Skotchmaster/buyme/pkg/tokens"
)

type sentEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (f *fakePublisher) byTopic(topic string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

type fakeIndex struct {
	indexed []string
	deleted []string
	result  search.Result
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.ProductDoc) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(context.Context, string, int, int) (search.Result, error) {
	return f.result, f.err
}

func newStore(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		_ = sqlDB.Close()
	})
	return repo.NewGormRepo(gdb)
}

func seed(t *testing.T, store repo.Store, docs ...models.ProductDoc) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range docs {
		docs[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateProduct(context.Background(), &docs[i]))
	}
}

type failingStore struct{ repo.Store }

func (failingStore) ListProducts(context.Context) ([]models.ProductDoc, error) {
	return nil, errors.New("connection refused")
}

func TestStorefront_LoadSnapshotSkipsBadPrices(t *testing.T) {
	store := newStore(t)
	seed(t, store,
		models.ProductDoc{ID: "a", Name: "A", Price: "10", IsNew: true},
		models.ProductDoc{ID: "bad", Name: "Bad", Price: "ten"},
		models.ProductDoc{ID: "b", Name: "B", Price: "5", IsNew: true},
		models.ProductDoc{ID: "c", Name: "C", Price: "20"},
	)
	svc := &StorefrontService{Store: store}

	snap, err := svc.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, snap.Len())

	view, err := svc.View(context.Background(), catalog.Filter{Sort: catalog.SortPriceAsc})
	require.NoError(t, err)
	var shown []string
	for _, p := range view.Shelves[catalog.ShelfNewArrival].Shown() {
		shown = append(shown, p.ID)
	}
	require.Equal(t, []string{"b", "a"}, shown)
}

func TestStorefront_FetchFailureYieldsEmptyView(t *testing.T) {
	svc := &StorefrontService{Store: failingStore{Store: newStore(t)}}

	view, err := svc.View(context.Background(), catalog.Filter{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch products")
	require.Empty(t, view.Products)
}

func TestStorefront_ProductDanglingCategory(t *testing.T) {
	store := newStore(t)
	seed(t, store, models.ProductDoc{ID: "p1", Name: "Tee", Price: "49.99", CategoryID: "gone"})
	svc := &StorefrontService{Store: store}

	d, err := svc.Product(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, catalog.UnknownCategory, d.CategoryLabel)

	_, err = svc.Product(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorefront_SearchFallback(t *testing.T) {
	store := newStore(t)
	seed(t, store,
		models.ProductDoc{ID: "1", Name: "Red Shirt", Price: "1"},
		models.ProductDoc{ID: "2", Name: "Cap", Price: "1"},
		models.ProductDoc{ID: "3", Name: "shirt blue", Price: "1"},
	)
	svc := &StorefrontService{Store: store, Index: &fakeIndex{err: errors.New("es down")}}

	res, err := svc.Search(context.Background(), "SHIRT", 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, "1", res.Items[0].ID)

	_, err = svc.Search(context.Background(), "", 1, 10)
	require.ErrorIs(t, err, ErrValidation)
}

func TestStorefront_SearchHugePageIsEmpty(t *testing.T) {
	store := newStore(t)
	seed(t, store, models.ProductDoc{ID: "1", Name: "Tee", Price: "1"})
	svc := &StorefrontService{Store: store}

	res, err := svc.Search(context.Background(), "tee", math.MaxInt, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	require.Empty(t, res.Items)
}

func TestStorefront_SearchIndex(t *testing.T) {
	idx := &fakeIndex{result: search.Result{Total: 1, Hits: []models.ProductDoc{{ID: "x", Name: "Tee", Price: "9"}}}}
	svc := &StorefrontService{Store: newStore(t), Index: idx}

	res, err := svc.Search(context.Background(), "tee", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "x", res.Items[0].ID)
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	store := newStore(t)
	pub := &fakePublisher{}
	idx := &fakeIndex{}
	svc := &AdminService{Store: store, Events: pub, Index: idx}
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "", Price: "1"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Tee", Price: "abc"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Tee", Price: "-2"})
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Tee", Price: "49.99", IsPromotion: true, CategoryID: "c-missing"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, catalog.UnknownCategory, list[0].CategoryLabel)
	require.True(t, list[0].Doc.IsPromotion)

	upd, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Name: "Tee v2", Price: "45"})
	require.NoError(t, err)
	require.Equal(t, "Tee v2", upd.Name)
	require.False(t, upd.IsPromotion)

	_, err = svc.UpdateProduct(ctx, "missing", ProductInput{Name: "x", Price: "1"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	require.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)

	events := pub.byTopic(TopicProducts)
	require.Len(t, events, 3)
	require.Equal(t, "product_created", events[0].Event["type"])
	require.Equal(t, "product_updated", events[1].Event["type"])
	require.Equal(t, "product_deleted", events[2].Event["type"])
	require.Equal(t, []string{p.ID, p.ID}, idx.indexed)
	require.Equal(t, []string{p.ID}, idx.deleted)
}

func TestAdmin_PriceKeepsCents(t *testing.T) {
	svc := &AdminService{Store: newStore(t)}
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Tee", Price: "49.999"})
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Tee", Price: "49.990"})
	require.NoError(t, err)
	price, err := catalog.ParsePrice(p.Price)
	require.NoError(t, err)
	require.Equal(t, "49.99", price.StringFixed(2))
}

func TestAdmin_IndexFailureDoesNotFailWrite(t *testing.T) {
	svc := &AdminService{Store: newStore(t), Index: &fakeIndex{err: errors.New("es down")}}
	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Tee", Price: "1"})
	require.NoError(t, err)
}

func TestAdmin_CategoriesAndCustomers(t *testing.T) {
	store := newStore(t)
	pub := &fakePublisher{}
	svc := &AdminService{Store: store, Events: pub}
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "  ")
	require.ErrorIs(t, err, ErrValidation)
	c, err := svc.CreateCategory(ctx, "Shirts")
	require.NoError(t, err)
	c, err = svc.UpdateCategory(ctx, c.ID, "Tops")
	require.NoError(t, err)
	require.Equal(t, "Tops", c.Label)
	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	require.Len(t, pub.byTopic(TopicCategories), 3)

	_, err = svc.CreateCustomer(ctx, UserInput{Name: "Ann", Email: "ann@example.com", Role: "owner"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateCustomer(ctx, UserInput{Name: "Ann", Email: "not-an-email", Role: "staff"})
	require.ErrorIs(t, err, ErrValidation)

	u, err := svc.CreateCustomer(ctx, UserInput{Name: "Ann", Email: "Ann@Example.com", Role: "Staff"})
	require.NoError(t, err)
	require.Equal(t, account.RoleStaff, u.Role)
	require.Equal(t, "ann@example.com", u.Email)

	u, err = svc.UpdateCustomer(ctx, u.ID, UserInput{Name: "Ann B", Email: "ann@example.com", Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, account.RoleAdmin, u.Role)

	users, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, svc.DeleteCustomer(ctx, u.ID))
	require.ErrorIs(t, svc.DeleteCustomer(ctx, u.ID), ErrNotFound)
}

func TestAdmin_Dashboard(t *testing.T) {
	store := newStore(t)
	svc := &AdminService{Store: store}
	ctx := context.Background()
	seed(t, store, models.ProductDoc{Name: "A", Price: "1"}, models.ProductDoc{Name: "B", Price: "2"})

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 7 {
		require.NoError(t, store.CreateUser(ctx, &models.UserDoc{
			Name: "u", Email: "u@example.com", Role: "customer",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, d.TotalUsers)
	require.Equal(t, 2, d.TotalProducts)
	require.Equal(t, 0, d.TotalCategories)
	require.Len(t, d.RecentUsers, 5)
	require.True(t, d.RecentUsers[0].CreatedAt.After(d.RecentUsers[4].CreatedAt))
}

func TestAdmin_UploadImage(t *testing.T) {
	svc := &AdminService{Store: newStore(t)}
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	ref, err := svc.UploadImage(context.Background(), "a.png", bytes.NewReader(png))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))

	_, err = svc.UploadImage(context.Background(), "a.txt", strings.NewReader("plain text"))
	require.ErrorIs(t, err, ErrValidation)
}

func newAuth(t *testing.T) (*AuthService, *repo.GormRepo) {
	store := newStore(t)
	return &AuthService{Store: store, Secret: []byte("test-secret"), TTL: time.Hour}, store
}

func TestAuth_SignUpAndSignIn(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	require.Equal(t, account.RoleCustomer, u.Role)

	_, err = svc.SignUp(ctx, "ANN@example.com", "secret2", "Ann again")
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.SignUp(ctx, "bob@example.com", "123", "Bob")
	require.ErrorIs(t, err, ErrValidation)

	sess, err := svc.SignIn(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "/", sess.Destination)
	require.Equal(t, u.ID, sess.User.ID)

	claims, err := tokens.SessionClaimsFromToken(sess.Token, svc.Secret)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "customer", claims.Role)

	_, err = svc.SignIn(ctx, "ann@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_SignInRoleRouting(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "staff@example.com", "secret1", "Sam")
	require.NoError(t, err)

	doc, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	doc.Role = "staff"
	require.NoError(t, store.UpdateUser(ctx, doc))

	sess, err := svc.SignIn(ctx, "staff@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "/staff/dashboard", sess.Destination)

	doc.Role = "manager"
	require.NoError(t, store.UpdateUser(ctx, doc))
	_, err = svc.SignIn(ctx, "staff@example.com", "secret1")
	require.ErrorIs(t, err, ErrNoAccess)

	role, err := svc.StoredRole(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, account.Role("manager"), role)
}

func TestCheckout_SubmitFlow(t *testing.T) {
	store := newStore(t)
	seed(t, store, models.ProductDoc{ID: "p1", Name: "Tee", Price: "49.99"})
	pub := &fakePublisher{}
	svc := &CheckoutService{
		Sessions:   checkout.NewSessions(time.Minute),
		Storefront: &StorefrontService{Store: store},
		Gateway:    &SimulatedGateway{Events: pub},
	}
	ctx := context.Background()

	st, err := svc.Open(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, checkout.Open, st.State)
	require.Equal(t, 1, st.Quantity)

	_, st, err = svc.Submit(ctx, st.ID, "")
	require.ErrorIs(t, err, checkout.ErrSizeRequired)
	require.Equal(t, checkout.Open, st.State)
	require.Empty(t, pub.byTopic(TopicPayments))

	_, err = svc.SelectSize(st.ID, "m")
	require.NoError(t, err)
	st, err = svc.SetQuantity(st.ID, 2)
	require.NoError(t, err)

	rc, st, err := svc.Submit(ctx, st.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, checkout.Closed, st.State)
	require.Equal(t, "Payment processed for Tee (Size: M, Quantity: 2)", rc.Message)
	require.Equal(t, "u1", rc.Intent.UserID)

	payments := pub.byTopic(TopicPayments)
	require.Len(t, payments, 1)
	require.Equal(t, checkout.SizeM, payments[0].Event["size"])
	require.Equal(t, 2, payments[0].Event["quantity"])
	require.Equal(t, "99.98", payments[0].Event["total"])
	require.Equal(t, "u1", payments[0].Event["userID"])

	_, err = svc.State(st.ID)
	require.ErrorIs(t, err, checkout.ErrSessionNotFound)

	_, err = svc.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
