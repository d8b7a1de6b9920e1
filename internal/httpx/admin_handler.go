package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
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

// AdminHandler is the back-office surface: product management, order listing
// and fulfillment. All routes require an admin session.
type AdminHandler struct {
	Catalog           *shop.Catalog
	History           *shop.OrderHistory
	Fulfillment       *shop.FulfillmentEngine
	ProducerCompleted *kafkax.Producer // shop.order.completed
	ProducerRejected  *kafkax.Producer // shop.stock.rejected
	Redis             *redis.Client
	Service           string
}

func (h *AdminHandler) Register(r *chi.Mux, sessions *auth.Service) {
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware, sessions.RequireAdmin)
		r.Post("/api/admin/products", h.createProduct)
		r.Put("/api/admin/products/{id}", h.updateProduct)
		r.Delete("/api/admin/products/{id}", h.deleteProduct)
		r.Get("/api/admin/orders", h.listOrders)
		r.Get("/api/admin/orders/{id}", h.getOrder)
		r.Post("/api/admin/orders/{id}/complete", h.completeOrder)
	})
}

type productReq struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	Stock           int    `json:"stock"`
	OriginalPrice   string `json:"original_price"`
	DiscountedPrice string `json:"discounted_price"`
}

func (req productReq) toInput() shop.ProductInput {
	return shop.ProductInput{
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Stock:           req.Stock,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
	}
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.CreateProduct(ctx, req.toInput())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResp(*p))
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.UpdateProduct(ctx, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResp(*p))
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.History.All(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResps(orders))
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.History.ByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(*order))
}

func (h *AdminHandler) completeOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Fulfillment.CompleteOrder(ctx, orderID)
	if err != nil {
		var ise *shop.InsufficientStockError
		if errors.As(err, &ise) {
			h.publishRejected(orderID, ise, r.Header.Get("X-Request-Id"))
		}
		writeErr(w, err)
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"completed"}`, redisx.TTLStatusCache).Err()

	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(shop.OrderCompletedPayload{OrderID: orderID}),
	}
	h.ProducerCompleted.Publish(shop.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order marked as complete",
		"order":   orderResp{OrderID: order.ID, UserID: order.UserID, TotalPrice: order.TotalPrice, Status: string(order.Status), CreatedAt: order.CreatedAt},
	})
}

func (h *AdminHandler) publishRejected(orderID string, ise *shop.InsufficientStockError, trace string) {
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventStockRejected,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(shop.StockRejectedPayload{
			OrderID:   orderID,
			ProductID: ise.ProductID,
			Requested: ise.Requested,
			Available: ise.Available,
		}),
	}
	h.ProducerRejected.Publish(shop.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventStockRejected)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
