package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CatalogHandler serves the public product browsing endpoints. No session
// required: guests can window-shop.
type CatalogHandler struct {
	Catalog *shop.Catalog
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.list)
	r.Get("/api/products/{id}", h.get)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := r.URL.Query()
	f := shop.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
	}
	if p := q.Get("price"); p != "" {
		if d, err := decimal.NewFromString(p); err == nil {
			f.MaxPrice = decimal.NullDecimal{Decimal: d, Valid: true}
		}
	}
	switch q.Get("availability") {
	case "in-stock":
		t := true
		f.InStock = &t
	case "out-of-stock":
		fa := false
		f.InStock = &fa
	}

	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)
	f.Limit = limit
	f.Offset = (page - 1) * limit

	products, err := h.Catalog.Products(ctx, f)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResp(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": out,
		"page":    page,
		"limit":   limit,
	})
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Product(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResp(*p))
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
