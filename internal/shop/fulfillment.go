package shop

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// FulfillmentEngine moves an order pending -> completed and decrements stock
// per line. Completion is idempotent-reject: the second call fails with
// ErrAlreadyCompleted and touches nothing.
type FulfillmentEngine struct {
	store Ledger
	log   *zap.Logger
}

func NewFulfillmentEngine(store Ledger, log *zap.Logger) *FulfillmentEngine {
	return &FulfillmentEngine{store: store, log: log}
}

// CompleteOrder validates every line's stock before mutating any, then
// applies conditional decrements (stock = stock - qty WHERE stock >= qty).
// The pre-pass keeps the common insufficient-stock case side-effect free; the
// conditional write closes the lost-update race between two orders competing
// for the same product. A decrement can still be refused after the pre-pass
// when a concurrent completion wins in between; earlier lines of this call
// are then already applied and are not reversed.
func (e *FulfillmentEngine) CompleteOrder(ctx context.Context, orderID string) (*Order, error) {
	order, err := e.store.OrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !CanTransitionOrder(order.Status, OrderCompleted) {
		return nil, ErrAlreadyCompleted
	}

	items, err := e.store.OrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		stock, err := e.store.ProductStock(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if stock < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: stock,
			}
		}
	}

	for _, it := range items {
		ok, err := e.store.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			available, serr := e.store.ProductStock(ctx, it.ProductID)
			if serr != nil {
				available = 0
			}
			e.log.Warn("stock decrement refused mid-fulfillment",
				zap.String("order_id", orderID), zap.String("product_id", it.ProductID))
			return nil, &InsufficientStockError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: available,
			}
		}
	}

	if err := e.store.UpdateOrderStatus(ctx, orderID, OrderCompleted); err != nil {
		return nil, err
	}
	order.Status = OrderCompleted

	e.log.Info("order fulfilled",
		zap.String("order_id", orderID), zap.Int("lines", len(items)))
	return order, nil
}
