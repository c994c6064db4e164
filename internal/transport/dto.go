package transport

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/buyme/internal/account"
	"github.com/Skotchmaster/buyme/internal/catalog"
	"github.com/Skotchmaster/buyme/internal/checkout"
	"github.com/Skotchmaster/buyme/internal/models"
	"github.com/Skotchmaster/buyme/internal/service"
)

// Prices travel as decimal strings so no precision is lost on the way to
// the client.

type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	ImageURL      string    `json:"image_url"`
	CategoryID    string    `json:"category_id"`
	Category      string    `json:"category,omitempty"`
	IsNew         bool      `json:"is_new"`
	IsBestselling bool      `json:"is_bestselling"`
	IsAccessory   bool      `json:"is_accessory"`
	IsPromotion   bool      `json:"is_promotion"`
	CreatedAt     time.Time `json:"created_at"`
}

func Product(p catalog.Product, category string) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		Category:      category,
		IsNew:         p.IsNew,
		IsBestselling: p.IsBestselling,
		IsAccessory:   p.IsAccessory,
		IsPromotion:   p.IsPromotion,
		CreatedAt:     p.CreatedAt,
	}
}

// ProductDoc renders a stored row as is, price text included.
func ProductDoc(d models.ProductDoc, category string) ProductResponse {
	return ProductResponse{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         d.Price,
		ImageURL:      d.ImageURL,
		CategoryID:    d.CategoryID,
		Category:      category,
		IsNew:         d.IsNew,
		IsBestselling: d.IsBestselling,
		IsAccessory:   d.IsAccessory,
		IsPromotion:   d.IsPromotion,
		CreatedAt:     d.CreatedAt,
	}
}

// Products labels each product from cats; with no categories at hand the
// label is left out.
func Products(ps []catalog.Product, cats []catalog.Category) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		label := ""
		if cats != nil {
			label = catalog.CategoryLabel(cats, p.CategoryID)
		}
		out = append(out, Product(p, label))
	}
	return out
}

type CategoryResponse struct {
	ID    string `json:"id"`
	Label string `json:"type"`
}

func Categories(cs []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, CategoryResponse{ID: c.ID, Label: c.Label})
	}
	return out
}

type ShelfResponse struct {
	Name        string            `json:"name"`
	Items       []ProductResponse `json:"items"`
	Visible     int               `json:"visible"`
	Total       int               `json:"total"`
	HasMore     bool              `json:"has_more"`
	NextVisible int               `json:"next_visible"`
	FetchError  bool              `json:"fetch_error"`
}

func Shelf(s *catalog.Shelf, cats []catalog.Category) ShelfResponse {
	next := s.Visible()
	if s.HasMore() {
		next = min(s.Visible()+catalog.PageStep, s.Len())
	}
	return ShelfResponse{
		Name:        string(s.Name),
		Items:       Products(s.Shown(), cats),
		Visible:     s.Visible(),
		Total:       s.Len(),
		HasMore:     s.HasMore(),
		NextVisible: next,
	}
}

type FilterResponse struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
	MinPrice string `json:"min_price,omitempty"`
	MaxPrice string `json:"max_price,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

func Filter(f catalog.Filter) FilterResponse {
	q := catalog.EncodeQuery(f)
	return FilterResponse{
		Category: q.Get(catalog.QueryCategory),
		Search:   q.Get(catalog.QuerySearch),
		MinPrice: q.Get(catalog.QueryMinPrice),
		MaxPrice: q.Get(catalog.QueryMaxPrice),
		Sort:     q.Get(catalog.QuerySort),
	}
}

type StorefrontResponse struct {
	Products     []ProductResponse  `json:"products"`
	Shelves      []ShelfResponse    `json:"shelves"`
	Categories   []CategoryResponse `json:"categories"`
	Filter       FilterResponse     `json:"filter"`
	CanonicalURL string             `json:"canonical_url"`
	ReplaceURL   bool               `json:"replace_url"`
	FetchedAt    time.Time          `json:"fetched_at"`
	FetchError   bool               `json:"fetch_error"`
}

func Storefront(v catalog.View, fetchErr bool) StorefrontResponse {
	shelves := make([]ShelfResponse, 0, len(catalog.ShelfNames))
	for _, n := range catalog.ShelfNames {
		sr := Shelf(v.Shelves[n], v.Categories)
		sr.FetchError = fetchErr
		shelves = append(shelves, sr)
	}
	return StorefrontResponse{
		Products:     Products(v.Products, v.Categories),
		Shelves:      shelves,
		Categories:   Categories(v.Categories),
		Filter:       Filter(v.Filter),
		CanonicalURL: v.CanonicalURL,
		FetchedAt:    v.FetchedAt,
		FetchError:   fetchErr,
	}
}

type OpenCheckoutRequest struct {
	ProductID string `json:"product_id"`
}

type SizeRequest struct {
	Size string `json:"size"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutResponse struct {
	ID          string   `json:"id"`
	State       string   `json:"state"`
	ProductID   string   `json:"product_id,omitempty"`
	ProductName string   `json:"product_name,omitempty"`
	Price       string   `json:"price,omitempty"`
	Size        string   `json:"size"`
	Quantity    int      `json:"quantity"`
	Sizes       []string `json:"sizes"`
	Message     string   `json:"message,omitempty"`
}

func Checkout(st service.ModalState, message string) CheckoutResponse {
	sizes := make([]string, 0, len(checkout.Sizes))
	for _, s := range checkout.Sizes {
		sizes = append(sizes, string(s))
	}
	resp := CheckoutResponse{
		ID:          st.ID,
		State:       st.State.String(),
		ProductID:   st.ProductID,
		ProductName: st.ProductName,
		Size:        string(st.Size),
		Quantity:    st.Quantity,
		Sizes:       sizes,
		Message:     message,
	}
	if st.State == checkout.Open {
		resp.Price = st.Price.StringFixed(2)
	}
	return resp
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func User(u account.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

func Users(us []account.User) []UserResponse {
	out := make([]UserResponse, 0, len(us))
	for _, u := range us {
		out = append(out, User(u))
	}
	return out
}

type SignInResponse struct {
	User        UserResponse `json:"user"`
	Destination string       `json:"destination"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type ProductRequest struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         json.Number `json:"price"`
	ImageURL      string      `json:"image_url"`
	CategoryID    string      `json:"category_id"`
	IsNew         bool        `json:"is_new"`
	IsBestselling bool        `json:"is_bestselling"`
	IsAccessory   bool        `json:"is_accessory"`
	IsPromotion   bool        `json:"is_promotion"`
}

func (r ProductRequest) Input() service.ProductInput {
	return service.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price.String(),
		ImageURL:      r.ImageURL,
		CategoryID:    r.CategoryID,
		IsNew:         r.IsNew,
		IsBestselling: r.IsBestselling,
		IsAccessory:   r.IsAccessory,
		IsPromotion:   r.IsPromotion,
	}
}

type CategoryRequest struct {
	Label string `json:"type"`
}

type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r CustomerRequest) Input() service.UserInput {
	return service.UserInput{Name: r.Name, Email: r.Email, Role: r.Role}
}

type DashboardResponse struct {
	TotalUsers      int            `json:"total_users"`
	TotalProducts   int            `json:"total_products"`
	TotalCategories int            `json:"total_categories"`
	RecentUsers     []UserResponse `json:"recent_users"`
}

func Dashboard(d service.Dashboard) DashboardResponse {
	return DashboardResponse{
		TotalUsers:      d.TotalUsers,
		TotalProducts:   d.TotalProducts,
		TotalCategories: d.TotalCategories,
		RecentUsers:     Users(d.RecentUsers),
	}
}

type ImageResponse struct {
	ImageURL string `json:"image_url"`
}
