package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutEngine converts a pending cart into a pending order. The store has
// no multi-row transaction, so the write order is load-bearing: order and
// order items land fully before the cart is touched. A crash in between
// leaves the cart intact (and possibly a duplicate-able order) rather than a
// lost one.
type CheckoutEngine struct {
	store Ledger
	carts *CartManager
	log   *zap.Logger
}

func NewCheckoutEngine(store Ledger, carts *CartManager, log *zap.Logger) *CheckoutEngine {
	return &CheckoutEngine{store: store, carts: carts, log: log}
}

type CheckoutResult struct {
	OrderID string
	Total   decimal.Decimal
	Items   []OrderItem
}

// Checkout fails with ErrNoPendingCart / ErrEmptyCart before writing
// anything. Totals are exact decimals: sum of quantity * snapshot price.
func (e *CheckoutEngine) Checkout(ctx context.Context, userID string) (*CheckoutResult, error) {
	cart, err := e.carts.PendingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionCart(cart.Status, CartCheckedOut) {
		return nil, ErrNoPendingCart
	}

	items, err := e.store.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}

	order := &Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		TotalPrice: total,
		Status:     OrderPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	orderItems := make([]OrderItem, 0, len(items))
	for _, it := range items {
		oi := OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
		if err := e.store.InsertOrderItem(ctx, &oi); err != nil {
			// order row sudah ada; cart belum disentuh, jadi masih bisa
			// direkonsiliasi dan di-retry
			return nil, err
		}
		orderItems = append(orderItems, oi)
	}

	// Only after the order is fully durable: clear the cart, then retire it.
	if err := e.store.DeleteCartItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	if err := e.store.UpdateCartStatus(ctx, cart.ID, CartCheckedOut); err != nil {
		return nil, err
	}

	e.log.Info("checkout completed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", total.String()),
		zap.Int("lines", len(orderItems)))

	return &CheckoutResult{OrderID: order.ID, Total: total, Items: orderItems}, nil
}
