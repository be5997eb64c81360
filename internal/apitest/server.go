// Package apitest provides an in-process fake of the remote store API for
// tests: catalog reads served from seeded fixtures, token auth, and order
// capture. Handlers mirror the real API's envelope and error shapes.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/KyoTung/camera-store-client/internal/api"
)

// Account is a seeded login for the fake API.
type Account struct {
	User     api.User
	Password string
}

// Server is the fake store API. Fixture fields may be set before issuing
// requests; handlers serve them as-is.
type Server struct {
	URL string

	mu         sync.Mutex
	hs         *httptest.Server
	products   []api.Product
	brands     []api.Brand
	categories []api.Category
	codes      []api.DiscountCode
	accounts   []Account
	tokens     map[string]api.User

	orders      []api.OrderRequest
	orderStatus map[int64]string
	nextOrderID int64

	failSaveOrder bool
}

// New starts the fake API.
func New() *Server {
	s := &Server{
		tokens:      make(map[string]api.User),
		orderStatus: make(map[int64]string),
		nextOrderID: 1,
	}

	r := chi.NewRouter()

	r.Get("/all-products", s.handleProducts)
	r.Get("/featured-products", s.handleFeaturedProducts)
	r.Get("/product-detail/{id}", s.handleProductDetail)
	r.Get("/all-brands", s.handleBrands)
	r.Get("/brand-product/{id}", s.handleBrandProducts)
	r.Get("/all-categories", s.handleCategories)
	r.Get("/category-product/{id}", s.handleCategoryProducts)
	r.Get("/all-discount-code", s.handleDiscountCodes)

	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)
	r.Get("/user", s.handleCurrentUser)
	r.Put("/update-user/{id}", s.handleUpdateUser)

	r.Post("/save-order", s.handleSaveOrder)
	r.Get("/order-history/{id}", s.handleOrderHistory)
	r.Get("/order-confirmation/{id}", s.handleOrderConfirmation)
	r.Put("/cancel-order/{id}", s.statusHandler(api.OrderStatusCancelled))
	r.Put("/shipped-order/{id}", s.statusHandler(api.OrderStatusShipped))
	r.Put("/refunded-order/{id}", s.statusHandler(api.OrderStatusRefunded))

	s.hs = httptest.NewServer(r)
	s.URL = s.hs.URL
	return s
}

// Close shuts the fake API down.
func (s *Server) Close() {
	s.hs.Close()
}

// SeedProducts sets the catalog fixture.
func (s *Server) SeedProducts(products ...api.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

// SeedBrands sets the brand fixture.
func (s *Server) SeedBrands(brands ...api.Brand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands = brands
}

// SeedCategories sets the category fixture.
func (s *Server) SeedCategories(categories ...api.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

// SeedDiscountCodes sets the discount-code fixture.
func (s *Server) SeedDiscountCodes(codes ...api.DiscountCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = codes
}

// SeedAccount registers a login the fake API will accept.
func (s *Server) SeedAccount(user api.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, Account{User: user, Password: password})
}

// Orders returns the order requests captured by /save-order.
func (s *Server) Orders() []api.OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.OrderRequest, len(s.orders))
	copy(out, s.orders)
	return out
}

// OrderStatus returns the current status of a captured order.
func (s *Server) OrderStatus(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderStatus[id]
}

// FailSaveOrder makes /save-order return 503 until called with false.
func (s *Server) FailSaveOrder(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaveOrder = fail
}

// --- handlers ---

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.products})
}

func (s *Server) handleFeaturedProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	featured := []api.Product{}
	for _, p := range s.products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": featured})
}

func (s *Server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid product id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"data": p})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "product not found"})
}

func (s *Server) handleBrands(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.brands})
}

func (s *Server) handleBrandProducts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid brand id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	matches := []api.Product{}
	for _, p := range s.products {
		if p.BrandID == id {
			matches = append(matches, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": matches})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.categories})
}

func (s *Server) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid category id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	matches := []api.Product{}
	for _, p := range s.products {
		if p.CategoryID == id {
			matches = append(matches, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": matches})
}

func (s *Server) handleDiscountCodes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.codes})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.User.Email == creds.Email && acc.Password == creds.Password {
			token := uuid.NewString()
			s.tokens[token] = acc.User
			writeJSON(w, http.StatusOK, api.AuthResponse{User: acc.User, AccessToken: token})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid credentials"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg api.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.User.Email == reg.Email {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "email already taken"})
			return
		}
	}

	user := api.User{ID: int64(len(s.accounts) + 1), Name: reg.Name, Email: reg.Email}
	s.accounts = append(s.accounts, Account{User: user, Password: reg.Password})
	token := uuid.NewString()
	s.tokens[token] = user
	writeJSON(w, http.StatusOK, api.AuthResponse{User: user, AccessToken: token})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tokens[bearerToken(r)]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "unauthenticated"})
		return
	}

	var user api.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}

	user.ID = current.ID
	for i, acc := range s.accounts {
		if acc.User.ID == current.ID {
			s.accounts[i].User = user
		}
	}
	s.tokens[bearerToken(r)] = user
	writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.tokens[bearerToken(r)]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "unauthenticated"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleSaveOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSaveOrder {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "order service unavailable"})
		return
	}
	if _, ok := s.tokens[bearerToken(r)]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "unauthenticated"})
		return
	}

	var order api.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}

	id := s.nextOrderID
	s.nextOrderID++
	s.orders = append(s.orders, order)
	s.orderStatus[id] = api.OrderStatusPending
	writeJSON(w, http.StatusOK, api.OrderResult{OrderID: id})
}

// orderView synthesizes the order-history shape from a captured request.
// Order ids are assigned sequentially from 1 in capture order.
func (s *Server) orderView(idx int) api.Order {
	req := s.orders[idx]
	id := int64(idx + 1)
	return api.Order{
		ID:            id,
		UserID:        req.UserID,
		Status:        s.orderStatus[id],
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		SubTotal:      req.SubTotal,
		GrandTotal:    req.GrandTotal,
		Discount:      req.Discount,
		Shipping:      req.Shipping,
		Items:         req.Cart,
	}
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid user id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []api.Order{}
	for i, req := range s.orders {
		if req.UserID == userID {
			orders = append(orders, s.orderView(i))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": orders})
}

func (s *Server) handleOrderConfirmation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid order id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.orders) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.orderView(int(id - 1))})
}

func (s *Server) statusHandler(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid order id"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.orderStatus[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "order not found"})
			return
		}
		s.orderStatus[id] = status
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	}
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
