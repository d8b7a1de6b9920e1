package shop

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartManager owns the "at most one pending cart per user" invariant. The
// store enforces it mechanically (unique index); the manager handles the
// lost-race by adopting the winner's cart.
type CartManager struct {
	store Ledger
	log   *zap.Logger
}

func NewCartManager(store Ledger, log *zap.Logger) *CartManager {
	return &CartManager{store: store, log: log}
}

// ResolveOrCreatePendingCart returns the user's pending cart, creating one
// lazily if none exists. Never fails with a not-found.
func (m *CartManager) ResolveOrCreatePendingCart(ctx context.Context, userID string) (*Cart, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}

	cart, err := m.store.PendingCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart = &Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    CartPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.InsertCart(ctx, cart); err != nil {
		if errors.Is(err, ErrPendingCartExists) {
			// kalah race dengan request lain; pakai cart pemenang
			m.log.Debug("pending cart insert lost race", zap.String("user_id", userID))
			return m.store.PendingCartByUser(ctx, userID)
		}
		return nil, err
	}
	m.log.Info("pending cart created",
		zap.String("cart_id", cart.ID), zap.String("user_id", userID))
	return cart, nil
}

// PendingCart is the strict variant: it never creates and fails with
// ErrNoPendingCart when the user has none. Checkout builds on this.
func (m *CartManager) PendingCart(ctx context.Context, userID string) (*Cart, error) {
	cart, err := m.store.PendingCartByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoPendingCart
	}
	return cart, err
}

// AddItem puts quantity units of a product into the user's pending cart.
// First add of a product snapshots its effective price; repeat adds only
// increment the quantity and keep the old snapshot.
func (m *CartManager) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if productID == "" {
		return &ValidationError{Field: "product_id", Reason: "required"}
	}

	// Cart first, price second: matches the observed behavior that a failed
	// add can still leave a freshly created (empty) cart behind.
	cart, err := m.ResolveOrCreatePendingCart(ctx, userID)
	if err != nil {
		return err
	}

	product, err := m.store.ProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	// increment dulu; ErrNotFound berarti ini add pertama untuk produk itu
	err = m.store.AddCartItemQuantity(ctx, cart.ID, productID, quantity)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return err
	}

	err = m.store.InsertCartItem(ctx, &CartItem{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.EffectivePrice(),
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, ErrCartItemExists) {
		// kalah race pada insert pertama; line pemenang tinggal ditambah
		return m.store.AddCartItemQuantity(ctx, cart.ID, productID, quantity)
	}
	return err
}

// UpdateItemQuantity overwrites the line's quantity. The price snapshot is
// left alone.
func (m *CartManager) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	cart, err := m.store.PendingCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCartNotFound
		}
		return err
	}

	if err := m.store.UpdateCartItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

// RemoveItem deletes the line for the product. Removing a product that is
// not in the cart is a no-op, not an error.
func (m *CartManager) RemoveItem(ctx context.Context, userID, productID string) error {
	cart, err := m.ResolveOrCreatePendingCart(ctx, userID)
	if err != nil {
		return err
	}
	return m.store.DeleteCartItem(ctx, cart.ID, productID)
}

// Items returns the cart lines in insertion order, joined with a product
// summary. A user with no pending cart gets an empty slice.
func (m *CartManager) Items(ctx context.Context, userID string) ([]CartLine, error) {
	cart, err := m.store.PendingCartByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return []CartLine{}, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := m.store.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		summary := ProductSummary{ID: it.ProductID}
		product, err := m.store.ProductByID(ctx, it.ProductID)
		switch {
		case err == nil:
			summary = ProductSummary{
				ID:              product.ID,
				Name:            product.Name,
				ImageURL:        product.ImageURL,
				OriginalPrice:   product.OriginalPrice,
				DiscountedPrice: product.DiscountedPrice,
			}
		case errors.Is(err, ErrNotFound):
			// product deleted from the catalog after being carted; keep the
			// line, the snapshot price is what the user will pay
			m.log.Warn("cart line references missing product",
				zap.String("cart_id", cart.ID), zap.String("product_id", it.ProductID))
		default:
			return nil, err
		}
		lines = append(lines, CartLine{Product: summary, Quantity: it.Quantity, Price: it.Price})
	}
	return lines, nil
}
