package shop_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/ledger"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCartManager(t *testing.T) (*shop.CartManager, *ledger.Memory) {
	t.Helper()
	store := ledger.NewMemory()
	return shop.NewCartManager(store, zap.NewNop()), store
}

func seedProduct(t *testing.T, store *ledger.Memory, name, original, discounted string, stock int) *shop.Product {
	t.Helper()
	p := &shop.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Stock:         stock,
		OriginalPrice: decimal.RequireFromString(original),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if discounted != "" {
		p.DiscountedPrice = decimal.NullDecimal{Decimal: decimal.RequireFromString(discounted), Valid: true}
	}
	require.NoError(t, store.InsertProduct(context.Background(), p))
	return p
}

func TestResolveOrCreatePendingCart(t *testing.T) {
	carts, _ := newCartManager(t)
	ctx := context.Background()

	c1, err := carts.ResolveOrCreatePendingCart(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, shop.CartPending, c1.Status)

	c2, err := carts.ResolveOrCreatePendingCart(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, c1.ID, c2.ID, "second resolve must reuse the pending cart")

	other, err := carts.ResolveOrCreatePendingCart(ctx, "user-2")
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, other.ID)
}

func TestResolveOrCreateRequiresUser(t *testing.T) {
	carts, _ := newCartManager(t)

	_, err := carts.ResolveOrCreatePendingCart(context.Background(), "")
	var ve *shop.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAddItemSnapshotsEffectivePrice(t *testing.T) {
	carts, store := newCartManager(t)
	ctx := context.Background()
	p := seedProduct(t, store, "kopi", "100.00", "80.00", 10)

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 1))

	lines, err := carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, lines[0].Price.Equal(decimal.RequireFromString("80.00")),
		"snapshot must be the discounted price, got %s", lines[0].Price)

	// a later price change must not touch the snapshot
	p.DiscountedPrice = decimal.NullDecimal{Decimal: decimal.RequireFromString("95.00"), Valid: true}
	require.NoError(t, store.UpdateProduct(ctx, p))

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 2))
	lines, err = carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 3, lines[0].Quantity, "repeat adds must sum quantities")
	require.True(t, lines[0].Price.Equal(decimal.RequireFromString("80.00")),
		"snapshot must survive the price change, got %s", lines[0].Price)
}

func TestAddItemFallsBackToOriginalPrice(t *testing.T) {
	carts, store := newCartManager(t)
	ctx := context.Background()
	p := seedProduct(t, store, "teh", "15.50", "", 10)

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 1))

	lines, err := carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, lines[0].Price.Equal(decimal.RequireFromString("15.50")))
}

func TestAddItemUnknownProduct(t *testing.T) {
	carts, _ := newCartManager(t)
	ctx := context.Background()

	err := carts.AddItem(ctx, "user-1", uuid.NewString(), 1)
	require.ErrorIs(t, err, shop.ErrProductNotFound)

	// the cart creation step is not rolled back
	cart, err := carts.PendingCart(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, shop.CartPending, cart.Status)
}

func TestAddItemRejectsBadQuantity(t *testing.T) {
	carts, store := newCartManager(t)
	p := seedProduct(t, store, "gula", "5.00", "", 10)

	var ve *shop.ValidationError
	require.ErrorAs(t, carts.AddItem(context.Background(), "user-1", p.ID, 0), &ve)
	require.ErrorAs(t, carts.AddItem(context.Background(), "user-1", p.ID, -2), &ve)
}

func TestUpdateItemQuantity(t *testing.T) {
	carts, store := newCartManager(t)
	ctx := context.Background()
	p := seedProduct(t, store, "susu", "12.00", "", 10)

	err := carts.UpdateItemQuantity(ctx, "user-1", p.ID, 2)
	require.ErrorIs(t, err, shop.ErrCartNotFound)

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 1))

	err = carts.UpdateItemQuantity(ctx, "user-1", uuid.NewString(), 2)
	require.ErrorIs(t, err, shop.ErrItemNotFound)

	var ve *shop.ValidationError
	require.ErrorAs(t, carts.UpdateItemQuantity(ctx, "user-1", p.ID, 0), &ve)

	require.NoError(t, carts.UpdateItemQuantity(ctx, "user-1", p.ID, 7))
	lines, err := carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 7, lines[0].Quantity)
	require.True(t, lines[0].Price.Equal(decimal.RequireFromString("12.00")),
		"quantity update must not refresh the snapshot")
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	carts, store := newCartManager(t)
	ctx := context.Background()
	p := seedProduct(t, store, "roti", "8.00", "", 10)

	// removing from an untouched cart is not an error
	require.NoError(t, carts.RemoveItem(ctx, "user-1", p.ID))

	require.NoError(t, carts.AddItem(ctx, "user-1", p.ID, 2))
	require.NoError(t, carts.RemoveItem(ctx, "user-1", p.ID))

	lines, err := carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, lines)

	require.NoError(t, carts.RemoveItem(ctx, "user-1", p.ID))
}

func TestConcurrentAddsKeepOnePendingCart(t *testing.T) {
	carts, store := newCartManager(t)
	p := seedProduct(t, store, "flash-sale", "9.99", "", 100)

	// all workers race on first-time cart creation and on the first line
	// insert; losers must adopt the winner's cart and merge into its line
	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- carts.AddItem(context.Background(), "user-1", p.ID, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, store.CountPendingCarts("user-1"))

	lines, err := carts.Items(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, workers, lines[0].Quantity)
}

func TestItemsEmptyWithoutCart(t *testing.T) {
	carts, _ := newCartManager(t)

	lines, err := carts.Items(context.Background(), "user-without-cart")
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestItemsKeepInsertionOrder(t *testing.T) {
	carts, store := newCartManager(t)
	ctx := context.Background()
	a := seedProduct(t, store, "zappa", "1.00", "", 10)
	b := seedProduct(t, store, "alpha", "2.00", "", 10)
	c := seedProduct(t, store, "mango", "3.00", "", 10)

	require.NoError(t, carts.AddItem(ctx, "user-1", a.ID, 1))
	require.NoError(t, carts.AddItem(ctx, "user-1", b.ID, 1))
	require.NoError(t, carts.AddItem(ctx, "user-1", c.ID, 1))

	lines, err := carts.Items(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	require.Equal(t, a.ID, lines[0].Product.ID)
	require.Equal(t, b.ID, lines[1].Product.ID)
	require.Equal(t, c.ID, lines[2].Product.ID)
}
