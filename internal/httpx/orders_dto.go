package httpx

import (
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/shopspring/decimal"
)

type orderItemResp struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type orderResp struct {
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []orderItemResp `json:"items"`
}

func toOrderResp(o shop.OrderWithItems) orderResp {
	items := make([]orderItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResp{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return orderResp{
		OrderID:    o.Order.ID,
		UserID:     o.Order.UserID,
		TotalPrice: o.Order.TotalPrice,
		Status:     string(o.Order.Status),
		CreatedAt:  o.Order.CreatedAt,
		Items:      items,
	}
}

func toOrderResps(orders []shop.OrderWithItems) []orderResp {
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return out
}

type productResp struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Category        string              `json:"category"`
	Description     string              `json:"description"`
	ImageURL        string              `json:"image_url"`
	Stock           int                 `json:"stock"`
	OriginalPrice   decimal.Decimal     `json:"original_price"`
	DiscountedPrice decimal.NullDecimal `json:"discounted_price"`
}

func toProductResp(p shop.Product) productResp {
	return productResp{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		Stock:           p.Stock,
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: p.DiscountedPrice,
	}
}
