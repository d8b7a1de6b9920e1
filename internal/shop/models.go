package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string
	FirstName string
	LastName  string
	Username  string
	Address   string
	Phone     string
	Email     string
	Password  string // bcrypt hash
	Role      string // "user" | "admin"
	CreatedAt time.Time
}

type Product struct {
	ID              string
	Name            string
	Category        string
	Description     string
	ImageURL        string
	Stock           int
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectivePrice: harga diskon kalau ada, kalau tidak harga asli.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.Valid {
		return p.DiscountedPrice.Decimal
	}
	return p.OriginalPrice
}

type Cart struct {
	ID        string
	UserID    string
	Status    CartStatus // lihat status.go
	CreatedAt time.Time
}

type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	Price     decimal.Decimal // snapshot at first insert, never refreshed
	CreatedAt time.Time
}

// Subtotal = quantity * snapshot price, exact decimal.
func (it CartItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Order struct {
	ID         string
	UserID     string
	TotalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
}

type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal // durable copy from the cart line
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ProductSummary is the slice of product data shown on a cart line.
type ProductSummary struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	ImageURL        string              `json:"image_url"`
	OriginalPrice   decimal.Decimal     `json:"original_price"`
	DiscountedPrice decimal.NullDecimal `json:"discounted_price"`
}

// CartLine is what getItems returns: product summary + quantity + snapshot price.
type CartLine struct {
	Product  ProductSummary  `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
