// Package checkout turns the current cart into a submitted order: it
// validates the shipping form, builds the order payload and hands it to
// the store API, then empties the cart on success.
package checkout

import (
	"context"
	"log/slog"

	"github.com/KyoTung/camera-store-client/internal/api"
	"github.com/KyoTung/camera-store-client/internal/cart"
	"github.com/KyoTung/camera-store-client/internal/session"
	"github.com/KyoTung/camera-store-client/internal/storage"
	apperrors "github.com/KyoTung/camera-store-client/pkg/errors"
	"github.com/KyoTung/camera-store-client/pkg/validator"
)

// Payment methods accepted by the form.
const (
	PaymentCOD  = "cod"
	PaymentBank = "bank"
)

// Form is the shipping and payment information the shopper fills in.
type Form struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	District      string `json:"district" validate:"required"`
	Commune       string `json:"commune" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cod bank"`
	Discount      float64
	Shipping      float64
}

// OrderAPI is the slice of the store API checkout needs. *api.Client
// satisfies it.
type OrderAPI interface {
	SaveOrder(ctx context.Context, order api.OrderRequest) (*api.OrderResult, error)
}

// Service submits orders.
type Service struct {
	api     OrderAPI
	cart    *cart.Store
	session *session.Store
	storage storage.Store
	logger  *slog.Logger
}

// New creates a checkout service.
func New(orderAPI OrderAPI, cartStore *cart.Store, sess *session.Store, st storage.Store, logger *slog.Logger) *Service {
	return &Service{
		api:     orderAPI,
		cart:    cartStore,
		session: sess,
		storage: st,
		logger:  logger,
	}
}

// Submit places an order for the current cart. It requires a logged-in
// session and a non-empty cart. Bank transfers are recorded as already
// paid, cash on delivery as not paid. On success the cart is emptied and
// its persisted mirror removed.
func (s *Service) Submit(ctx context.Context, form Form) (*api.OrderResult, error) {
	// A degraded persisted session can carry a token without a user
	// snapshot, so the profile needs its own check.
	user := s.session.User()
	if !s.session.LoggedIn() || user == nil {
		return nil, apperrors.Unauthorized("you must be logged in to place an order")
	}
	if err := validator.Validate(form); err != nil {
		return nil, err
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	paymentStatus := "not paid"
	if form.PaymentMethod == PaymentBank {
		paymentStatus = "paid"
	}

	req := api.OrderRequest{
		UserID:        user.ID,
		Name:          form.Name,
		Email:         form.Email,
		Address:       form.Address,
		Phone:         form.Phone,
		City:          form.City,
		District:      form.District,
		Commune:       form.Commune,
		PaymentMethod: form.PaymentMethod,
		PaymentStatus: paymentStatus,
		Status:        api.OrderStatusPending,
		SubTotal:      s.cart.Subtotal(),
		GrandTotal:    s.cart.GrandTotal(form.Discount, form.Shipping),
		Discount:      form.Discount,
		Shipping:      form.Shipping,
		Cart:          lines,
	}

	result, err := s.api.SaveOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	s.cart.Clear(ctx)
	if err := s.storage.Delete(ctx, storage.KeyCart); err != nil {
		s.logger.WarnContext(ctx, "could not remove persisted cart after checkout",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", result.OrderID),
		slog.Int64("user_id", user.ID),
		slog.Float64("grand_total", req.GrandTotal),
	)
	return result, nil
}
