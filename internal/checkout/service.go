// Package checkout derives order totals from the cart and submits the
// purchase. Payment itself is out of scope; the backend only records which
// products were bought.
package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/trendbasket/storefront/internal/cart"
	"github.com/trendbasket/storefront/internal/products"
	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
)

type purchaser interface {
	Purchase(ctx context.Context, userID, productID string) (*products.PurchaseResult, error)
}

type cartStore interface {
	Items() []cart.LineItem
	Clear() error
}

// Totals is the checkout summary shown before the user confirms.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Service submits orders against the storefront backend.
type Service struct {
	client  purchaser
	cart    cartStore
	taxRate decimal.Decimal
	logg    *logger.Logger
}

// ServiceParams bundles the dependencies required to build a checkout
// service.
type ServiceParams struct {
	Client   purchaser
	Cart     cartStore
	Checkout config.CheckoutConfig
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("storefront client is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	rate, err := decimal.NewFromString(params.Checkout.TaxRatePercent)
	if err != nil {
		return nil, fmt.Errorf("parsing tax rate %q: %w", params.Checkout.TaxRatePercent, err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	return &Service{
		client:  params.Client,
		cart:    params.Cart,
		taxRate: rate,
		logg:    params.Logger,
	}, nil
}

// Totals computes the discount-adjusted subtotal, the tax line and the
// grand total for the current cart, rounded to two decimal places.
func (s *Service) Totals() Totals {
	subtotal := cart.Subtotal(s.cart.Items())
	tax := subtotal.Mul(s.taxRate).Div(decimal.NewFromInt(100)).Round(2)
	return Totals{
		Subtotal: subtotal.Round(2),
		Tax:      tax,
		Total:    subtotal.Round(2).Add(tax),
	}
}

// PlaceOrder purchases every line item for the user. Failures are collected
// per item and the cart is cleared only when every purchase succeeded, so a
// partial failure leaves the remaining work visible.
func (s *Service) PlaceOrder(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to checkout")
	}
	items := s.cart.Items()
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ctx = s.logg.WithUserID(ctx, userID)

	var errs []error
	for _, item := range items {
		if _, err := s.client.Purchase(ctx, userID, item.ID); err != nil {
			s.logg.Error(ctx, "purchase failed for "+item.ID, err)
			errs = append(errs, fmt.Errorf("purchase %s: %w", item.ID, err))
		}
	}
	if combined := multierr.Combine(errs...); combined != nil {
		return combined
	}

	if err := s.cart.Clear(); err != nil {
		return err
	}
	s.logg.Info(ctx, "order placed, cart cleared")
	return nil
}
