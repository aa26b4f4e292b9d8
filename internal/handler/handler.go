// Package handler exposes the order engine over HTTP. Handlers only translate
// between JSON and domain types; all business logic lives in the domain
// packages.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ashab-Asir/order-management/internal/domain/auth"
	"github.com/Ashab-Asir/order-management/internal/domain/catalog"
	"github.com/Ashab-Asir/order-management/internal/domain/order"
)

// Handler serves the API routes, delegating to the catalog store and the
// order service.
type Handler struct {
	products catalog.Store
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products catalog.Store, orders *order.Service) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
	}
}

// Routes mounts the API on a chi router. Every route requires an
// authenticated caller; the admin listing additionally requires RoleAdmin.
func (h *Handler) Routes(authn *Authenticator) chi.Router {
	r := chi.NewRouter()
	r.Use(authn.Middleware)

	r.Get("/products", h.ListProducts)
	r.Post("/orders/preview", h.PreviewOrder)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListMyOrders)
	r.Get("/orders/{orderID}", h.GetOrder)

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(auth.RoleAdmin))
		r.Get("/admin/orders", h.ListAllOrders)
	})

	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}
