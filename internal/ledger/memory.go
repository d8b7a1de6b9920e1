package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
)

// Memory is an in-process shop.Ledger for tests and local development. It
// mirrors the Postgres semantics the engines lean on: the one-pending-cart
// unique index and the conditional stock decrement.
type Memory struct {
	mu sync.Mutex

	users      map[string]shop.User
	products   map[string]shop.Product
	carts      map[string]shop.Cart
	cartItems  []shop.CartItem // slice keeps insertion order
	orders     map[string]shop.Order
	orderSeq   []string // insertion order of order IDs
	orderItems []shop.OrderItem
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]shop.User),
		products: make(map[string]shop.Product),
		carts:    make(map[string]shop.Cart),
		orders:   make(map[string]shop.Order),
	}
}

// ---- users ----

func (m *Memory) InsertUser(ctx context.Context, u *shop.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (*shop.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, shop.ErrNotFound
}

func (m *Memory) UserByID(ctx context.Context, id string) (*shop.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	out := u
	return &out, nil
}

// ---- products ----

func (m *Memory) InsertProduct(ctx context.Context, p *shop.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) UpdateProduct(ctx context.Context, p *shop.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *Memory) ProductByID(ctx context.Context, id string) (*shop.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	out := p
	return &out, nil
}

func (m *Memory) Products(ctx context.Context, f shop.ProductFilter) ([]shop.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []shop.Product
	for _, p := range m.products {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MaxPrice.Valid && p.EffectivePrice().GreaterThan(f.MaxPrice.Decimal) {
			continue
		}
		if f.InStock != nil {
			if *f.InStock && p.Stock == 0 {
				continue
			}
			if !*f.InStock && p.Stock != 0 {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
		if len(out) > f.Limit {
			out = out[:f.Limit]
		}
	}
	return out, nil
}

func (m *Memory) ProductStock(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, shop.ErrNotFound
	}
	return p.Stock, nil
}

func (m *Memory) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	m.products[productID] = p
	return true, nil
}

// ---- carts ----

func (m *Memory) InsertCart(ctx context.Context, c *shop.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Status == shop.CartPending {
		for _, existing := range m.carts {
			if existing.UserID == c.UserID && existing.Status == shop.CartPending {
				return shop.ErrPendingCartExists
			}
		}
	}
	m.carts[c.ID] = *c
	return nil
}

func (m *Memory) PendingCartByUser(ctx context.Context, userID string) (*shop.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		if c.UserID == userID && c.Status == shop.CartPending {
			out := c
			return &out, nil
		}
	}
	return nil, shop.ErrNotFound
}

func (m *Memory) UpdateCartStatus(ctx context.Context, cartID string, status shop.CartStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[cartID]
	if !ok {
		return nil
	}
	c.Status = status
	m.carts[cartID] = c
	return nil
}

// ---- cart items ----

func (m *Memory) InsertCartItem(ctx context.Context, it *shop.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.cartItems {
		if existing.CartID == it.CartID && existing.ProductID == it.ProductID {
			return shop.ErrCartItemExists
		}
	}
	m.cartItems = append(m.cartItems, *it)
	return nil
}

func (m *Memory) AddCartItemQuantity(ctx context.Context, cartID, productID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			m.cartItems[i].Quantity += delta
			return nil
		}
	}
	return shop.ErrNotFound
}

func (m *Memory) CartItem(ctx context.Context, cartID, productID string) (*shop.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			out := it
			return &out, nil
		}
	}
	return nil, shop.ErrNotFound
}

func (m *Memory) CartItems(ctx context.Context, cartID string) ([]shop.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shop.CartItem
	for _, it := range m.cartItems {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *Memory) UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			m.cartItems[i].Quantity = quantity
			return nil
		}
	}
	return shop.ErrNotFound
}

func (m *Memory) DeleteCartItem(ctx context.Context, cartID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			m.cartItems = append(m.cartItems[:i], m.cartItems[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) DeleteCartItems(ctx context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.cartItems[:0]
	for _, it := range m.cartItems {
		if it.CartID != cartID {
			kept = append(kept, it)
		}
	}
	m.cartItems = kept
	return nil
}

// CountPendingCarts reports how many pending carts a user holds. Exists so
// tests can observe the one-pending-cart invariant directly.
func (m *Memory) CountPendingCarts(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.carts {
		if c.UserID == userID && c.Status == shop.CartPending {
			n++
		}
	}
	return n
}

// ---- orders ----

func (m *Memory) InsertOrder(ctx context.Context, o *shop.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = *o
	m.orderSeq = append(m.orderSeq, o.ID)
	return nil
}

func (m *Memory) OrderByID(ctx context.Context, id string) (*shop.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	out := o
	return &out, nil
}

func (m *Memory) OrdersByUser(ctx context.Context, userID string) ([]shop.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shop.Order
	// newest first, matching the Postgres ORDER BY created_at DESC
	for i := len(m.orderSeq) - 1; i >= 0; i-- {
		o := m.orders[m.orderSeq[i]]
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Memory) Orders(ctx context.Context) ([]shop.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shop.Order
	for i := len(m.orderSeq) - 1; i >= 0; i-- {
		out = append(out, m.orders[m.orderSeq[i]])
	}
	return out, nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, orderID string, status shop.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil
	}
	o.Status = status
	m.orders[orderID] = o
	return nil
}

func (m *Memory) InsertOrderItem(ctx context.Context, it *shop.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderItems = append(m.orderItems, *it)
	return nil
}

func (m *Memory) OrderItems(ctx context.Context, orderID string) ([]shop.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shop.OrderItem
	for _, it := range m.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

var _ shop.Ledger = (*Memory)(nil)
