package shop

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger is the row-level persistence contract the engines run on. Every
// method is a single statement against a single table: no implementation may
// span tables atomically, so multi-step operations (checkout, fulfillment)
// order their calls to stay recoverable on partial failure.
//
// Reads return ErrNotFound when no row matches. Other failures come back
// wrapped in *StoreError.
type Ledger interface {
	// users
	InsertUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)

	// products
	InsertProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
	ProductByID(ctx context.Context, id string) (*Product, error)
	Products(ctx context.Context, f ProductFilter) ([]Product, error)
	ProductStock(ctx context.Context, id string) (int, error)
	// DecrementStock subtracts qty only when enough stock remains
	// (conditional update, zero rows affected = refused). This is the
	// check-then-act pushed into the write itself.
	DecrementStock(ctx context.Context, productID string, qty int) (bool, error)

	// carts
	// InsertCart fails with ErrPendingCartExists when the user already has a
	// pending cart (partial unique index on carts(user_id) WHERE pending).
	InsertCart(ctx context.Context, c *Cart) error
	PendingCartByUser(ctx context.Context, userID string) (*Cart, error)
	UpdateCartStatus(ctx context.Context, cartID string, status CartStatus) error

	// cart items
	// InsertCartItem fails with ErrCartItemExists when the (cart, product)
	// line is already there (unique constraint).
	InsertCartItem(ctx context.Context, it *CartItem) error
	CartItem(ctx context.Context, cartID, productID string) (*CartItem, error)
	CartItems(ctx context.Context, cartID string) ([]CartItem, error) // insertion order
	// AddCartItemQuantity increments in place (quantity = quantity + delta);
	// ErrNotFound when no line exists. Like DecrementStock, the check lives
	// in the write so concurrent adds cannot lose an increment.
	AddCartItemQuantity(ctx context.Context, cartID, productID string, delta int) error
	UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, productID string) error // no-op when absent
	DeleteCartItems(ctx context.Context, cartID string) error

	// orders
	InsertOrder(ctx context.Context, o *Order) error
	OrderByID(ctx context.Context, id string) (*Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]Order, error)
	Orders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error
	InsertOrderItem(ctx context.Context, it *OrderItem) error
	OrderItems(ctx context.Context, orderID string) ([]OrderItem, error)
}

// ProductFilter mirrors the catalog query params: name search, category,
// price ceiling, stock availability, plus offset pagination.
type ProductFilter struct {
	Search   string
	Category string
	MaxPrice decimal.NullDecimal
	InStock  *bool // true = stock > 0, false = stock == 0, nil = all
	Limit    int
	Offset   int
}
