package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/buyme/internal/models"
)

func prod(id, price string, mut ...func(*Product)) Product {
	p := Product{ID: id, Name: "item " + id, Price: decimal.RequireFromString(price)}
	for _, m := range mut {
		m(&p)
	}
	return p
}

func isNew(p *Product)       { p.IsNew = true }
func bestselling(p *Product) { p.IsBestselling = true }
func accessory(p *Product)   { p.IsAccessory = true }

func ids(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApply_SortedShelfScenario(t *testing.T) {
	products := []Product{
		prod("a", "10", isNew),
		prod("b", "5", isNew),
		prod("c", "20"),
	}

	filtered := Apply(products, Filter{Sort: SortPriceAsc})
	shelves := Partition(filtered)

	require.Equal(t, []string{"b", "a"}, ids(shelves[ShelfNewArrival].Shown()))
}

func TestApply_SubsetAndPredicate(t *testing.T) {
	products := []Product{
		prod("1", "12.50", func(p *Product) { p.Name = "Red Shirt"; p.CategoryID = "c1" }),
		prod("2", "30", func(p *Product) { p.Name = "Blue shirt"; p.CategoryID = "c1" }),
		prod("3", "8", func(p *Product) { p.Name = "Cap"; p.CategoryID = "c2" }),
		prod("4", "15", func(p *Product) { p.Name = "SHIRT long"; p.CategoryID = "c1" }),
	}
	f := Filter{
		CategoryID: "c1",
		Search:     "shirt",
		PriceMin:   decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		PriceMax:   decimal.NewNullDecimal(decimal.RequireFromString("15")),
	}

	out := Apply(products, f)

	require.Equal(t, []string{"1", "4"}, ids(out))
	for _, p := range out {
		assert.Contains(t, ids(products), p.ID)
		assert.True(t, f.Matches(p))
	}
}

func TestApply_OrderingMonotoneAndStable(t *testing.T) {
	products := []Product{
		prod("a", "3"), prod("b", "1"), prod("c", "3"), prod("d", "2"), prod("e", "1"),
	}

	asc := Apply(products, Filter{Sort: SortPriceAsc})
	require.Equal(t, []string{"b", "e", "d", "a", "c"}, ids(asc))
	for i := 1; i < len(asc); i++ {
		assert.True(t, asc[i-1].Price.LessThanOrEqual(asc[i].Price))
	}

	desc := Apply(products, Filter{Sort: SortPriceDesc})
	require.Equal(t, []string{"a", "c", "d", "b", "e"}, ids(desc))
	for i := 1; i < len(desc); i++ {
		assert.True(t, desc[i-1].Price.GreaterThanOrEqual(desc[i].Price))
	}

	none := Apply(products, Filter{})
	require.Equal(t, ids(products), ids(none))
}

func TestApply_IdempotentAndPure(t *testing.T) {
	products := []Product{prod("a", "3"), prod("b", "1"), prod("c", "2")}
	f := Filter{Sort: SortPriceDesc, PriceMax: decimal.NewNullDecimal(decimal.NewFromInt(2))}

	once := Apply(products, f)
	twice := Apply(once, f)

	require.Equal(t, ids(once), ids(twice))
	require.Equal(t, []string{"a", "b", "c"}, ids(products))
}

func TestApply_InvertedBoundsIsEmpty(t *testing.T) {
	products := []Product{prod("a", "3"), prod("b", "5")}
	f := Filter{
		PriceMin: decimal.NewNullDecimal(decimal.NewFromInt(5)),
		PriceMax: decimal.NewNullDecimal(decimal.NewFromInt(3)),
	}
	require.Empty(t, Apply(products, f))
}

func TestShelf_ShowMore(t *testing.T) {
	products := make([]Product, 0, 15)
	for i := range 15 {
		products = append(products, prod(fmt.Sprint(i), "1", bestselling))
	}
	s := NewShelf(ShelfBestSelling, products)

	for k := 0; ; k++ {
		require.Equal(t, min(PageStep+PageStep*k, s.Len()), s.Visible())
		require.Len(t, s.Shown(), s.Visible())
		if !s.ShowMore() {
			break
		}
	}
	require.Equal(t, 15, s.Visible())
	require.False(t, s.HasMore())
	require.False(t, s.ShowMore())
	require.Equal(t, 15, s.Visible())
}

func TestShelf_ShortShelf(t *testing.T) {
	s := NewShelf(ShelfAccessories, []Product{prod("a", "1", accessory), prod("b", "1")})
	require.Equal(t, 1, s.Len())
	require.Equal(t, 1, s.Visible())
	require.False(t, s.HasMore())
	require.False(t, s.ShowMore())
}

func TestShelf_Restore(t *testing.T) {
	products := make([]Product, 0, 20)
	for i := range 20 {
		products = append(products, prod(fmt.Sprint(i), "1", isNew))
	}
	s := NewShelf(ShelfNewArrival, products)

	s.Restore(0)
	require.Equal(t, 6, s.Visible())
	s.Restore(12)
	require.Equal(t, 12, s.Visible())
	s.Restore(99)
	require.Equal(t, 20, s.Visible())
	require.False(t, s.HasMore())
}

func TestPartition_IndependentPredicates(t *testing.T) {
	products := []Product{
		prod("a", "1", isNew, bestselling),
		prod("b", "1", accessory),
		prod("c", "1"),
	}
	shelves := Partition(products)

	require.Equal(t, []string{"a"}, ids(shelves[ShelfNewArrival].Shown()))
	require.Equal(t, []string{"a"}, ids(shelves[ShelfBestSelling].Shown()))
	require.Equal(t, []string{"b"}, ids(shelves[ShelfAccessories].Shown()))
}

func TestParseShelfName(t *testing.T) {
	n, err := ParseShelfName("best-selling")
	require.NoError(t, err)
	require.Equal(t, ShelfBestSelling, n)

	_, err = ParseShelfName("clearance")
	require.Error(t, err)
}

func TestAddressBar_SyncOmitsDefaults(t *testing.T) {
	bar := NewAddressBar("/")

	f := Filter{Search: "shirt"}
	_, changed := bar.Sync("/", f)
	require.True(t, changed)

	f.CategoryID = "c1"
	f.Search = ""
	got, changed := bar.Sync("/", f)
	require.True(t, changed)

	u, err := url.Parse(got)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "c1", q.Get(QueryCategory))
	require.False(t, q.Has(QuerySearch))
	require.Equal(t, 1, bar.Len())
	require.Equal(t, got, bar.Current())

	_, changed = bar.Sync("/", f)
	require.False(t, changed)
}

func TestQuery_RoundTrip(t *testing.T) {
	f := Filter{
		CategoryID: "c2",
		Search:     "cap",
		PriceMin:   decimal.NewNullDecimal(decimal.RequireFromString("1.5")),
		Sort:       SortPriceDesc,
	}
	back, err := DecodeQuery(EncodeQuery(f))
	require.NoError(t, err)
	require.Equal(t, f.CategoryID, back.CategoryID)
	require.Equal(t, f.Search, back.Search)
	require.True(t, back.PriceMin.Valid)
	require.True(t, f.PriceMin.Decimal.Equal(back.PriceMin.Decimal))
	require.False(t, back.PriceMax.Valid)
	require.Equal(t, f.Sort, back.Sort)

	require.Equal(t, "/", CanonicalURL("/", Filter{}))
	require.True(t, Filter{}.IsZero())
	require.False(t, Filter{Sort: SortPriceDesc}.IsZero())
}

func TestDecodeQuery_Invalid(t *testing.T) {
	_, err := DecodeQuery(url.Values{QueryMinPrice: {"cheap"}})
	require.Error(t, err)

	_, err = DecodeQuery(url.Values{QuerySort: {"name"}})
	require.Error(t, err)
}

func TestDecodeProduct(t *testing.T) {
	p, err := DecodeProduct(models.ProductDoc{ID: "p1", Name: "Tee", Price: "49.99", IsNew: true})
	require.NoError(t, err)
	require.True(t, p.Price.Equal(decimal.RequireFromString("49.99")))
	require.True(t, p.IsNew)

	for _, price := range []string{"", "abc", "-1"} {
		_, err := DecodeProduct(models.ProductDoc{ID: "p2", Price: price})
		var de *DecodeError
		require.True(t, errors.As(err, &de), price)
		require.Equal(t, "products", de.Collection)
		require.Equal(t, "p2", de.ID)
		require.Equal(t, "price", de.Field)
	}

	_, err = DecodeProduct(models.ProductDoc{ID: "p3", Price: "-0.01"})
	require.ErrorIs(t, err, ErrNegativePrice)

	doc := EncodeProduct(p)
	require.Equal(t, "49.99", doc.Price)
}

func TestCategoryLabel(t *testing.T) {
	cats := []Category{{ID: "c1", Label: "Shirts"}}
	require.Equal(t, "Shirts", CategoryLabel(cats, "c1"))
	require.Equal(t, UnknownCategory, CategoryLabel(cats, "gone"))
}

func TestBuildView(t *testing.T) {
	snap := NewSnapshot(
		[]Product{prod("a", "10", isNew), prod("b", "5", isNew), prod("c", "20")},
		[]Category{{ID: "c1", Label: "Shirts"}},
	)
	v := BuildView(snap, Filter{Sort: SortPriceAsc})

	require.Equal(t, []string{"b", "a", "c"}, ids(v.Products))
	require.Equal(t, []string{"b", "a"}, ids(v.Shelves[ShelfNewArrival].Shown()))
	require.Equal(t, "/?sort=price_asc", v.CanonicalURL)
	require.Len(t, v.Categories, 1)
	require.Equal(t, 3, snap.Len())
	require.Equal(t, snap.FetchedAt(), v.FetchedAt)

	var empty *Snapshot
	require.Empty(t, BuildView(empty, Filter{}).Products)
}
