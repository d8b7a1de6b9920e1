package shop

import (
	"context"
	"errors"
)

// OrderHistory serves the read side: a user's own orders and the admin
// listing, each order carrying its durable line items.
type OrderHistory struct {
	store Ledger
}

func NewOrderHistory(store Ledger) *OrderHistory {
	return &OrderHistory{store: store}
}

type OrderWithItems struct {
	Order Order
	Items []OrderItem
}

func (h *OrderHistory) ForUser(ctx context.Context, userID string) ([]OrderWithItems, error) {
	orders, err := h.store.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.attachItems(ctx, orders)
}

func (h *OrderHistory) All(ctx context.Context) ([]OrderWithItems, error) {
	orders, err := h.store.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return h.attachItems(ctx, orders)
}

func (h *OrderHistory) ByID(ctx context.Context, orderID string) (*OrderWithItems, error) {
	order, err := h.store.OrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	items, err := h.store.OrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderWithItems{Order: *order, Items: items}, nil
}

func (h *OrderHistory) attachItems(ctx context.Context, orders []Order) ([]OrderWithItems, error) {
	out := make([]OrderWithItems, 0, len(orders))
	for _, o := range orders {
		items, err := h.store.OrderItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, OrderWithItems{Order: o, Items: items})
	}
	return out, nil
}
