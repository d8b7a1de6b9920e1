package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/auth"
	kafkax "github.com/ariefcatur/go-shop-cart.git/internal/kafka"
	"github.com/ariefcatur/go-shop-cart.git/internal/redisx"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// CartHandler serves the authenticated storefront: cart mutation, checkout
// and the user's order history. The acting user comes from the session
// middleware; the engines only ever see the opaque ID.
type CartHandler struct {
	Carts    *shop.CartManager
	Checkout *shop.CheckoutEngine
	History  *shop.OrderHistory
	Producer *kafkax.Producer // shop.order.placed
	Redis    *redis.Client
	Service  string
}

func (h *CartHandler) Register(r *chi.Mux, sessions *auth.Service) {
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Post("/api/cart/add", h.addItem)
		r.Get("/api/cart", h.items)
		r.Get("/api/cart/count", h.count)
		r.Post("/api/cart/update", h.updateQuantity)
		r.Post("/api/cart/remove", h.removeItem)
		r.Post("/api/checkout", h.checkout)
		r.Get("/api/orders", h.myOrders)
	})
}

type cartMutationReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req cartMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1 // default satu biji
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := auth.UserIDFrom(ctx)
	if err := h.Carts.AddItem(ctx, userID, req.ProductID, req.Quantity); err != nil {
		writeErr(w, err)
		return
	}

	count := h.refreshCartCount(ctx, userID)
	writeJSON(w, http.StatusCreated, map[string]any{"cart_count": count})
}

func (h *CartHandler) items(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Carts.Items(ctx, auth.UserIDFrom(ctx))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	userID := auth.UserIDFrom(ctx)
	key := fmt.Sprintf(redisx.KeyCartCount, userID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			writeJSON(w, http.StatusOK, map[string]int{"count": n})
			return
		}
	}
	count := h.refreshCartCount(ctx, userID)
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := auth.UserIDFrom(ctx)
	if err := h.Carts.UpdateItemQuantity(ctx, userID, req.ProductID, req.Quantity); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart quantity updated"})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	var req cartMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := auth.UserIDFrom(ctx)
	if err := h.Carts.RemoveItem(ctx, userID, req.ProductID); err != nil {
		writeErr(w, err)
		return
	}
	count := h.refreshCartCount(ctx, userID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "item removed", "cart_count": count})
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := auth.UserIDFrom(ctx)
	res, err := h.Checkout.Checkout(ctx, userID)
	if err != nil {
		writeErr(w, err)
		return
	}

	// cache status + buang cart count basi
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, res.OrderID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"pending"}`, redisx.TTLStatusCache).Err()
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartCount, userID)).Err()

	items := make([]shop.PlacedItem, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, shop.PlacedItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: res.OrderID,
		Payload: kafkax.MustMarshal(shop.OrderPlacedPayload{
			OrderID: res.OrderID, UserID: userID, Total: res.Total, Items: items,
		}),
	}
	h.Producer.Publish(shop.PartitionKey(res.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "checkout successful",
		"order_id": res.OrderID,
		"total":    res.Total,
	})
}

func (h *CartHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.History.ForUser(ctx, auth.UserIDFrom(ctx))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResps(orders))
}

// refreshCartCount recomputes the line count and refreshes the cache.
// Best-effort: a cache failure never fails the request.
func (h *CartHandler) refreshCartCount(ctx context.Context, userID string) int {
	lines, err := h.Carts.Items(ctx, userID)
	if err != nil {
		return 0
	}
	key := fmt.Sprintf(redisx.KeyCartCount, userID)
	_ = h.Redis.Set(ctx, key, strconv.Itoa(len(lines)), redisx.TTLCartCount).Err()
	return len(lines)
}
