package shop_test

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-shop-cart.git/internal/ledger"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalog(t *testing.T) (*shop.Catalog, *ledger.Memory) {
	t.Helper()
	store := ledger.NewMemory()
	return shop.NewCatalog(store, zap.NewNop()), store
}

func TestCreateProduct(t *testing.T) {
	catalog, _ := newCatalog(t)

	p, err := catalog.CreateProduct(context.Background(), shop.ProductInput{
		Name:            "kemeja",
		Category:        "pakaian",
		Stock:           12,
		OriginalPrice:   "150.00",
		DiscountedPrice: "99.90",
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.True(t, p.DiscountedPrice.Valid)
	require.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("99.90")))
	require.False(t, p.CreatedAt.IsZero())
}

func TestCreateProductValidation(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()
	var ve *shop.ValidationError

	_, err := catalog.CreateProduct(ctx, shop.ProductInput{OriginalPrice: "1.00"})
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "name", ve.Field)

	_, err = catalog.CreateProduct(ctx, shop.ProductInput{Name: "x", Stock: -1, OriginalPrice: "1.00"})
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "stock", ve.Field)

	_, err = catalog.CreateProduct(ctx, shop.ProductInput{Name: "x", OriginalPrice: "abc"})
	require.ErrorAs(t, err, &ve)

	_, err = catalog.CreateProduct(ctx, shop.ProductInput{Name: "x", OriginalPrice: "-5.00"})
	require.ErrorAs(t, err, &ve)
}

func TestUpdateProductKeepsCreatedAt(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	created, err := catalog.CreateProduct(ctx, shop.ProductInput{
		Name: "jaket", Stock: 3, OriginalPrice: "200.00",
	})
	require.NoError(t, err)

	updated, err := catalog.UpdateProduct(ctx, created.ID, shop.ProductInput{
		Name: "jaket hujan", Stock: 5, OriginalPrice: "180.00",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, "jaket hujan", updated.Name)
	require.True(t, updated.OriginalPrice.Equal(decimal.RequireFromString("180.00")))
	require.False(t, updated.DiscountedPrice.Valid, "omitting the discount clears it")
}

func TestUpdateProductNotFound(t *testing.T) {
	catalog, _ := newCatalog(t)

	_, err := catalog.UpdateProduct(context.Background(), uuid.NewString(), shop.ProductInput{
		Name: "x", OriginalPrice: "1.00",
	})
	require.ErrorIs(t, err, shop.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	p, err := catalog.CreateProduct(ctx, shop.ProductInput{Name: "topi", Stock: 1, OriginalPrice: "10.00"})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteProduct(ctx, p.ID))
	_, err = catalog.Product(ctx, p.ID)
	require.ErrorIs(t, err, shop.ErrProductNotFound)

	require.ErrorIs(t, catalog.DeleteProduct(ctx, p.ID), shop.ErrProductNotFound)
}
