package checkout

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendbasket/storefront/internal/cart"
	"github.com/trendbasket/storefront/internal/products"
	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
	"github.com/trendbasket/storefront/pkg/storage"
)

type stubPurchaser struct {
	failFor map[string]error
	calls   []string
}

func (s *stubPurchaser) Purchase(ctx context.Context, userID, productID string) (*products.PurchaseResult, error) {
	s.calls = append(s.calls, productID)
	if err, ok := s.failFor[productID]; ok {
		return nil, err
	}
	return &products.PurchaseResult{Message: "purchase recorded"}, nil
}

func buildService(t *testing.T, client *stubPurchaser, items []cart.LineItem) (*Service, *cart.Store) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cartStore, err := cart.NewStore(storage.NewMemory(), logg)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, cartStore.AddItem(item))
	}
	svc, err := NewService(ServiceParams{
		Client:   client,
		Cart:     cartStore,
		Checkout: config.CheckoutConfig{TaxRatePercent: "8"},
		Logger:   logg,
	})
	require.NoError(t, err)
	return svc, cartStore
}

func TestTotalsWithDiscountAndTax(t *testing.T) {
	svc, _ := buildService(t, &stubPurchaser{}, []cart.LineItem{
		{ID: "p1", UnitPrice: 100, DiscountPercent: 10, Quantity: 1},
		{ID: "p2", UnitPrice: 200, Quantity: 1},
	})

	totals := svc.Totals()
	assert.Equal(t, "290.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "23.20", totals.Tax.StringFixed(2))
	assert.Equal(t, "313.20", totals.Total.StringFixed(2))
}

func TestTotalsEmptyCart(t *testing.T) {
	svc, _ := buildService(t, &stubPurchaser{}, nil)

	totals := svc.Totals()
	assert.True(t, totals.Total.IsZero())
}

func TestPlaceOrderPurchasesEachItemAndClearsCart(t *testing.T) {
	client := &stubPurchaser{}
	svc, cartStore := buildService(t, client, []cart.LineItem{
		{ID: "p1", UnitPrice: 100},
		{ID: "p2", UnitPrice: 200},
	})

	require.NoError(t, svc.PlaceOrder(context.Background(), "u1"))
	assert.Equal(t, []string{"p1", "p2"}, client.calls)
	assert.Zero(t, cartStore.TotalCount())
}

func TestPlaceOrderPartialFailureKeepsCart(t *testing.T) {
	client := &stubPurchaser{failFor: map[string]error{
		"p2": pkgerrors.New(pkgerrors.CodeNetwork, "purchase failed"),
	}}
	svc, cartStore := buildService(t, client, []cart.LineItem{
		{ID: "p1", UnitPrice: 100},
		{ID: "p2", UnitPrice: 200},
	})

	err := svc.PlaceOrder(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, 2, cartStore.TotalCount(), "a failed checkout must not clear the cart")
	assert.Equal(t, []string{"p1", "p2"}, client.calls, "every item is still attempted")
}

func TestPlaceOrderRequiresUser(t *testing.T) {
	svc, _ := buildService(t, &stubPurchaser{}, []cart.LineItem{{ID: "p1"}})

	err := svc.PlaceOrder(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc, _ := buildService(t, &stubPurchaser{}, nil)

	err := svc.PlaceOrder(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestNewServiceRejectsUnparseableTaxRate(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cartStore, err := cart.NewStore(storage.NewMemory(), logg)
	require.NoError(t, err)

	_, err = NewService(ServiceParams{
		Client:   &stubPurchaser{},
		Cart:     cartStore,
		Checkout: config.CheckoutConfig{TaxRatePercent: "eight"},
		Logger:   logg,
	})
	require.Error(t, err)
}
