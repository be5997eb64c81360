package api

import (
	"strconv"

	"github.com/KyoTung/camera-store-client/internal/domain"
)

// Product is a catalog product as served by the store API.
type Product struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Price       float64        `json:"price"`
	Description string         `json:"description,omitempty"`
	BrandID     int64          `json:"brand_id,omitempty"`
	CategoryID  int64          `json:"category_id,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Featured    bool           `json:"featured,omitempty"`
	Images      []ProductImage `json:"product_images,omitempty"`
}

// ProductImage is one gallery image of a product.
type ProductImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
}

// CartProduct returns the slice of the product the cart store snapshots.
func (p Product) CartProduct() domain.Product {
	return domain.Product{
		ID:       strconv.FormatInt(p.ID, 10),
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// Brand is a product brand.
type Brand struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Category is a product category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DiscountCode is a promotional code with a validity window. Value is the
// discount fraction (0.1 = 10% off). Dates are "2006-01-02" strings as the
// API serves them; the discount package does the window arithmetic.
type DiscountCode struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// User is the authenticated shopper's profile.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Order is a placed order as returned by the order-history endpoints.
type Order struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	SubTotal      float64           `json:"sub_total"`
	GrandTotal    float64           `json:"grand_total"`
	Discount      float64           `json:"discount"`
	Shipping      float64           `json:"shipping"`
	CreatedAt     string            `json:"created_at,omitempty"`
	Items         []domain.CartLine `json:"cart,omitempty"`
}

// Order status values used by the history screens.
const (
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
	OrderStatusShipped   = "shipped"
	OrderStatusRefunded  = "refunded"
)

// OrderRequest is the order-creation payload. The full current cart line
// sequence rides along as the cart field.
type OrderRequest struct {
	UserID        int64             `json:"user_id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Address       string            `json:"address"`
	Phone         string            `json:"phone"`
	City          string            `json:"city"`
	District      string            `json:"district"`
	Commune       string            `json:"commune"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus string            `json:"payment_status"`
	Status        string            `json:"status"`
	SubTotal      float64           `json:"sub_total"`
	GrandTotal    float64           `json:"grand_total"`
	Discount      float64           `json:"discount"`
	Shipping      float64           `json:"shipping"`
	Cart          []domain.CartLine `json:"cart"`
}

// OrderResult is the body of a successful order submission.
type OrderResult struct {
	OrderID int64 `json:"order_id"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account-creation payload.
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResponse is returned by login and register. Unlike the catalog
// endpoints it is not wrapped in a data envelope.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
