// Package api is the typed client for the remote store API: catalog reads,
// discount codes, authentication and order submission. All persistent data
// lives behind this collaborator; the client only shapes requests and
// decodes the JSON envelopes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/KyoTung/camera-store-client/pkg/httpclient"
)

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty token means the request goes out anonymous.
type TokenSource interface {
	Token() string
}

// Client talks to the store API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates an API client. tokens may be nil for a client that only hits
// public catalog endpoints.
func New(baseURL string, hc *httpclient.CircuitBreakerClient, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		tokens:  tokens,
		logger:  logger,
	}
}

// dataEnvelope is the `{ "data": ... }` wrapper the catalog endpoints use.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// do builds and executes one request. A fresh correlation id is attached to
// every call so server logs can be joined with client logs.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Correlation-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// decode reads a 2xx response body into out, unwrapping the data envelope
// when enveloped is true. A non-2xx response is mapped onto the error
// taxonomy. out may be nil when the body does not matter.
func (c *Client) decode(resp *http.Response, path string, enveloped bool, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, path)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if enveloped {
		var env dataEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode %s envelope: %w", path, err)
		}
		raw = env.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) getEnveloped(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.decode(resp, path, true, out)
}

// --- Catalog ---

// Products fetches the full product list.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getEnveloped(ctx, "/all-products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FeaturedProducts fetches the products flagged for the home page.
func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getEnveloped(ctx, "/featured-products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductDetail fetches a single product with its image gallery.
func (c *Client) ProductDetail(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.getEnveloped(ctx, fmt.Sprintf("/product-detail/%d", id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Brands fetches all brands.
func (c *Client) Brands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := c.getEnveloped(ctx, "/all-brands", &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// BrandProducts fetches the products of one brand.
func (c *Client) BrandProducts(ctx context.Context, brandID int64) ([]Product, error) {
	var products []Product
	if err := c.getEnveloped(ctx, fmt.Sprintf("/brand-product/%d", brandID), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories fetches all categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getEnveloped(ctx, "/all-categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryProducts fetches the products of one category.
func (c *Client) CategoryProducts(ctx context.Context, categoryID int64) ([]Product, error) {
	var products []Product
	if err := c.getEnveloped(ctx, fmt.Sprintf("/category-product/%d", categoryID), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// DiscountCodes fetches all discount codes. Validity is checked client-side
// by the discount package.
func (c *Client) DiscountCodes(ctx context.Context) ([]DiscountCode, error) {
	var codes []DiscountCode
	if err := c.getEnveloped(ctx, "/all-discount-code", &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// --- Orders ---

// SaveOrder submits the order-creation request and returns the new order id.
func (c *Client) SaveOrder(ctx context.Context, order OrderRequest) (*OrderResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/save-order", order)
	if err != nil {
		return nil, err
	}

	var result OrderResult
	if err := c.decode(resp, "/save-order", false, &result); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "order submitted",
		slog.Int64("order_id", result.OrderID),
		slog.Int("lines", len(order.Cart)),
	)
	return &result, nil
}

// OrderHistory fetches all orders placed by a user.
func (c *Client) OrderHistory(ctx context.Context, userID int64) ([]Order, error) {
	var orders []Order
	if err := c.getEnveloped(ctx, fmt.Sprintf("/order-history/%d", userID), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderConfirmation fetches a single order by id for the confirmation screen.
func (c *Client) OrderConfirmation(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	if err := c.getEnveloped(ctx, fmt.Sprintf("/order-confirmation/%d", orderID), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder marks a pending order cancelled.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cancel-order/%d", orderID), nil)
	if err != nil {
		return err
	}
	return c.decode(resp, "/cancel-order", false, nil)
}

// MarkShipped marks an order received by the shopper.
func (c *Client) MarkShipped(ctx context.Context, orderID int64) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/shipped-order/%d", orderID), nil)
	if err != nil {
		return err
	}
	return c.decode(resp, "/shipped-order", false, nil)
}

// MarkRefunded requests a refund for a cancelled order.
func (c *Client) MarkRefunded(ctx context.Context, orderID int64) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/refunded-order/%d", orderID), nil)
	if err != nil {
		return err
	}
	return c.decode(resp, "/refunded-order", false, nil)
}

// --- Auth ---

// Login exchanges credentials for a bearer token and user profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", creds)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := c.decode(resp, "/login", false, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Register creates a new account and returns the initial session.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/register", reg)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := c.decode(resp, "/register", false, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Logout revokes the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	return c.decode(resp, "/logout", false, nil)
}

// CurrentUser fetches the profile bound to the current token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.decode(resp, "/user", false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the shopper's profile.
func (c *Client) UpdateUser(ctx context.Context, user User) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/update-user/%d", user.ID), user)
	if err != nil {
		return err
	}
	return c.decode(resp, "/update-user", false, nil)
}
