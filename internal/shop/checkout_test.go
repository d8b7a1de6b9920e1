package shop_test

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-shop-cart.git/internal/ledger"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngines(t *testing.T) (*shop.CartManager, *shop.CheckoutEngine, *shop.FulfillmentEngine, *ledger.Memory) {
	t.Helper()
	store := ledger.NewMemory()
	log := zap.NewNop()
	carts := shop.NewCartManager(store, log)
	checkout := shop.NewCheckoutEngine(store, carts, log)
	fulfillment := shop.NewFulfillmentEngine(store, log)
	return carts, checkout, fulfillment, store
}

func TestCheckoutWithoutPendingCart(t *testing.T) {
	_, checkout, _, _ := newEngines(t)

	_, err := checkout.Checkout(context.Background(), "user-1")
	require.ErrorIs(t, err, shop.ErrNoPendingCart)
}

func TestCheckoutEmptyCart(t *testing.T) {
	carts, checkout, _, store := newEngines(t)
	ctx := context.Background()
	p := seedProduct(t, store, "sabun", "4.00", "", 5)

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 1))
	require.NoError(t, carts.RemoveItem(ctx, "user-1", p.ID))

	_, err := checkout.Checkout(ctx, "user-1")
	require.ErrorIs(t, err, shop.ErrEmptyCart)
}

func TestCheckoutTotalIsExact(t *testing.T) {
	carts, checkout, _, store := newEngines(t)
	ctx := context.Background()

	// many small decimal lines; float accumulation would drift here
	a := seedProduct(t, store, "permen", "0.10", "", 1000)
	b := seedProduct(t, store, "buku", "19.99", "", 1000)
	c := seedProduct(t, store, "pulpen", "5.01", "", 1000)

	require.NoError(t, carts.AddItem(ctx, "user-1", a.ID, 3))
	require.NoError(t, carts.AddItem(ctx, "user-1", b.ID, 2))
	require.NoError(t, carts.AddItem(ctx, "user-1", c.ID, 1))

	res, err := checkout.Checkout(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, res.Total.Equal(decimal.RequireFromString("45.29")),
		"want 45.29, got %s", res.Total)

	order, err := store.OrderByID(ctx, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, shop.OrderPending, order.Status)
	require.True(t, order.TotalPrice.Equal(res.Total))
}

func TestCheckoutManyTinyLines(t *testing.T) {
	carts, checkout, _, store := newEngines(t)
	ctx := context.Background()
	p := seedProduct(t, store, "paku", "0.01", "", 100000)

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 10000))

	res, err := checkout.Checkout(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, res.Total.Equal(decimal.RequireFromString("100.00")),
		"10000 x 0.01 must be exactly 100.00, got %s", res.Total)
}

func TestCheckoutCopiesSnapshotsIntoOrderItems(t *testing.T) {
	carts, checkout, _, store := newEngines(t)
	ctx := context.Background()
	p := seedProduct(t, store, "topi", "50.00", "40.00", 10)

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 2))

	res, err := checkout.Checkout(ctx, "user-1")
	require.NoError(t, err)

	items, err := store.OrderItems(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, p.ID, items[0].ProductID)
	require.Equal(t, 2, items[0].Quantity)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("40.00")))
}

func TestCheckoutClearsAndRetiresCart(t *testing.T) {
	carts, checkout, _, store := newEngines(t)
	ctx := context.Background()
	p := seedProduct(t, store, "sepatu", "120.00", "", 10)

	oldCart, err := carts.ResolveOrCreatePendingCart(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 1))

	_, err = checkout.Checkout(ctx, "user-1")
	require.NoError(t, err)

	lines, err := carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, lines, "cart must be empty after checkout")

	// the retired cart no longer blocks a fresh pending cart
	fresh, err := carts.ResolveOrCreatePendingCart(ctx, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, oldCart.ID, fresh.ID)
	require.Equal(t, shop.CartPending, fresh.Status)

	// double checkout needs new content; the old cart's lines are gone
	_, err = checkout.Checkout(ctx, "user-1")
	require.ErrorIs(t, err, shop.ErrEmptyCart)

	items, err := store.CartItems(ctx, oldCart.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCheckoutThenFulfillEndToEnd(t *testing.T) {
	carts, checkout, fulfillment, store := newEngines(t)
	ctx := context.Background()
	p := seedProduct(t, store, "produk-a", "100.00", "", 5)

	require.NoError(t, carts.AddItem(ctx, "user-u", p.ID, 2))

	res, err := checkout.Checkout(ctx, "user-u")
	require.NoError(t, err)
	require.True(t, res.Total.Equal(decimal.RequireFromString("200.00")))

	order, err := fulfillment.CompleteOrder(ctx, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, shop.OrderCompleted, order.Status)

	stock, err := store.ProductStock(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stock)
}
