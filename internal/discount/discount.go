// Package discount resolves a promotional code typed by the shopper into
// the discount fraction applied to the cart subtotal.
package discount

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/KyoTung/camera-store-client/internal/api"
	apperrors "github.com/KyoTung/camera-store-client/pkg/errors"
)

// CodeLister fetches the current discount codes. *api.Client satisfies it.
type CodeLister interface {
	DiscountCodes(ctx context.Context) ([]api.DiscountCode, error)
}

// Resolver validates discount codes against the remote list.
type Resolver struct {
	codes  CodeLister
	logger *slog.Logger
	now    func() time.Time
}

// New creates a resolver.
func New(codes CodeLister, logger *slog.Logger) *Resolver {
	return &Resolver{codes: codes, logger: logger, now: time.Now}
}

const dateLayout = "2006-01-02"

// Resolve looks the code up by name and returns its discount fraction
// (0.1 means 10% off). Unknown codes return a not-found error; codes
// outside their validity window return an invalid-input error. The end
// date is inclusive, so a code expires at the end of its end day. Window
// boundaries are evaluated in UTC, matching the date strings the API
// serves.
func (r *Resolver) Resolve(ctx context.Context, code string) (float64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, apperrors.InvalidInput("discount code is required")
	}

	codes, err := r.codes.DiscountCodes(ctx)
	if err != nil {
		return 0, err
	}

	for _, dc := range codes {
		if dc.Name != code {
			continue
		}

		start, err := time.Parse(dateLayout, dc.StartDate)
		if err != nil {
			r.logger.WarnContext(ctx, "discount code has unparsable start date",
				slog.String("code", dc.Name),
				slog.String("start_date", dc.StartDate),
			)
			return 0, apperrors.InvalidInput("discount code is not valid")
		}
		end, err := time.Parse(dateLayout, dc.EndDate)
		if err != nil {
			r.logger.WarnContext(ctx, "discount code has unparsable end date",
				slog.String("code", dc.Name),
				slog.String("end_date", dc.EndDate),
			)
			return 0, apperrors.InvalidInput("discount code is not valid")
		}
		end = end.AddDate(0, 0, 1)

		now := r.now().UTC()
		if now.Before(start) {
			return 0, apperrors.InvalidInput("discount code is not active yet")
		}
		if !now.Before(end) {
			return 0, apperrors.InvalidInput("discount code has expired")
		}
		return dc.Value, nil
	}

	return 0, apperrors.NotFound("discount code", code)
}
