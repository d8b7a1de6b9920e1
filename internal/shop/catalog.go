package shop

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog is the product management side: browsing for the storefront,
// create/update/delete for the admin console. Stock here is only set by
// admins; sales decrement it through the FulfillmentEngine.
type Catalog struct {
	store Ledger
	log   *zap.Logger
}

func NewCatalog(store Ledger, log *zap.Logger) *Catalog {
	return &Catalog{store: store, log: log}
}

func (c *Catalog) Products(ctx context.Context, f ProductFilter) ([]Product, error) {
	return c.store.Products(ctx, f)
}

func (c *Catalog) Product(ctx context.Context, id string) (*Product, error) {
	p, err := c.store.ProductByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

type ProductInput struct {
	Name            string
	Category        string
	Description     string
	ImageURL        string
	Stock           int
	OriginalPrice   string // decimal text, parsed here
	DiscountedPrice string // optional
}

func (in ProductInput) toProduct() (*Product, error) {
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if in.Stock < 0 {
		return nil, &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	original, err := parsePrice("original_price", in.OriginalPrice)
	if err != nil {
		return nil, err
	}
	p := &Product{
		Name:          in.Name,
		Category:      in.Category,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Stock:         in.Stock,
		OriginalPrice: original,
	}
	if in.DiscountedPrice != "" {
		discounted, err := parsePrice("discounted_price", in.DiscountedPrice)
		if err != nil {
			return nil, err
		}
		p.DiscountedPrice.Valid = true
		p.DiscountedPrice.Decimal = discounted
	}
	return p, nil
}

func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := c.store.InsertProduct(ctx, p); err != nil {
		return nil, err
	}
	c.log.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	current, err := c.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	p.ID = current.ID
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if err := c.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if _, err := c.Product(ctx, id); err != nil {
		return err
	}
	return c.store.DeleteProduct(ctx, id)
}
