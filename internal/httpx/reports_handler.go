package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReportsHandler struct {
	Service *inventory.Service
	Log     *zap.Logger
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(withTimeout(15 * time.Second))
		r.Get("/summary", h.summary)
		r.Get("/products.csv", h.productsCSV)
		r.Get("/orders.csv", h.ordersCSV)
	})
}

func (h *ReportsHandler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Service.Summary(ctx)
	if err != nil {
		writeDomainError(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ReportsHandler) productsCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ps, err := h.Service.ListProducts(ctx)
	if err != nil {
		writeDomainError(h.Log, w, r, err)
		return
	}
	csvHeaders(w, "products-report.csv")
	if err := inventory.WriteProductsCSV(w, ps); err != nil {
		h.Log.Warn("write products csv", zap.Error(err))
	}
}

func (h *ReportsHandler) ordersCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Service.ListOrders(ctx)
	if err != nil {
		writeDomainError(h.Log, w, r, err)
		return
	}
	csvHeaders(w, "orders-report.csv")
	if err := inventory.WriteOrdersCSV(w, orders); err != nil {
		h.Log.Warn("write orders csv", zap.Error(err))
	}
}

func csvHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
}
