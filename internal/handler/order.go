package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Ashab-Asir/order-management/internal/domain/auth"
	"github.com/Ashab-Asir/order-management/internal/domain/order"
	"github.com/Ashab-Asir/order-management/internal/domain/pricing"
)

type orderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type summaryResponse struct {
	Subtotal          float64                    `json:"subtotal"`
	TotalDiscount     float64                    `json:"totalDiscount"`
	GrandTotal        float64                    `json:"grandTotal"`
	Items             []pricedLineResponse       `json:"items"`
	AppliedPromotions []appliedPromotionResponse `json:"appliedPromotions"`
}

type pricedLineResponse struct {
	ProductID      int64   `json:"productId"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	DiscountAmount float64 `json:"discountAmount"`
	LineTotal      float64 `json:"lineTotal"`
}

type appliedPromotionResponse struct {
	PromotionID   int64   `json:"promotionId"`
	Title         string  `json:"title"`
	Kind          string  `json:"kind"`
	TotalDiscount float64 `json:"totalDiscount"`
}

type placedOrderResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	summaryResponse
}

type orderHeaderResponse struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"userId"`
	Subtotal      float64   `json:"subtotal"`
	TotalDiscount float64   `json:"totalDiscount"`
	GrandTotal    float64   `json:"grandTotal"`
	CreatedAt     time.Time `json:"createdAt"`
}

type orderDetailResponse struct {
	orderHeaderResponse
	Items []pricedLineResponse `json:"items"`
}

// PreviewOrder prices the cart without persisting anything.
func (h *Handler) PreviewOrder(w http.ResponseWriter, r *http.Request) {
	lines, ok := decodeCart(w, r)
	if !ok {
		return
	}

	summary, err := h.orders.Preview(r.Context(), lines)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// CreateOrder prices the cart and commits it as a new order for the caller.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	lines, ok := decodeCart(w, r)
	if !ok {
		return
	}

	placed, err := h.orders.Create(r.Context(), identity.UserID, lines)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, placedOrderResponse{
		ID:              placed.Order.ID,
		CreatedAt:       placed.Order.CreatedAt,
		summaryResponse: toSummaryResponse(placed.Summary),
	})
}

// GetOrder returns one order with its persisted line items. Callers only see
// their own orders; admins see any. Someone else's order reads as 404 rather
// than 403 so order IDs cannot be probed.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orderID := chi.URLParam(r, "orderID")

	o, lines, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o.UserID != identity.UserID && identity.Role != auth.RoleAdmin {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	respondJSON(w, http.StatusOK, orderDetailResponse{
		orderHeaderResponse: toHeaderResponse(*o),
		Items:               toItemResponses(lines),
	})
}

// ListMyOrders returns the caller's order history, newest first.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, toHeaderResponses(orders))
}

// ListAllOrders returns every order. Guarded by RequireRole(RoleAdmin).
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, toHeaderResponses(orders))
}

func decodeCart(w http.ResponseWriter, r *http.Request) ([]pricing.CartLine, bool) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	lines := make([]pricing.CartLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = pricing.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	return lines, true
}

// respondOrderError maps domain errors to HTTP status codes.
func respondOrderError(w http.ResponseWriter, err error) {
	if errors.Is(err, pricing.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *pricing.InvalidQuantityError
	if errors.As(err, &iqErr) {
		respondError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var ipErr *pricing.InvalidProductError
	if errors.As(err, &ipErr) {
		respondError(w, http.StatusUnprocessableEntity, ipErr.Error())
		return
	}

	var pErr *order.PersistenceError
	if errors.As(err, &pErr) {
		respondError(w, http.StatusServiceUnavailable, "order could not be persisted, retry the request")
		return
	}

	respondError(w, http.StatusInternalServerError, "internal error")
}

func toItemResponses(lines []pricing.PricedLine) []pricedLineResponse {
	items := make([]pricedLineResponse, len(lines))
	for i, line := range lines {
		items[i] = pricedLineResponse{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice.InexactFloat64(),
			DiscountAmount: line.Discount.InexactFloat64(),
			LineTotal:      line.LineTotal.InexactFloat64(),
		}
	}
	return items
}

func toSummaryResponse(s *pricing.Summary) summaryResponse {
	promos := make([]appliedPromotionResponse, len(s.Promotions))
	for i, ap := range s.Promotions {
		promos[i] = appliedPromotionResponse{
			PromotionID:   ap.PromotionID,
			Title:         ap.Title,
			Kind:          string(ap.Kind),
			TotalDiscount: ap.Discount.InexactFloat64(),
		}
	}
	return summaryResponse{
		Subtotal:          s.Subtotal.InexactFloat64(),
		TotalDiscount:     s.TotalDiscount.InexactFloat64(),
		GrandTotal:        s.GrandTotal.InexactFloat64(),
		Items:             toItemResponses(s.Lines),
		AppliedPromotions: promos,
	}
}

func toHeaderResponse(o order.Order) orderHeaderResponse {
	return orderHeaderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Subtotal:      o.Subtotal.InexactFloat64(),
		TotalDiscount: o.TotalDiscount.InexactFloat64(),
		GrandTotal:    o.GrandTotal.InexactFloat64(),
		CreatedAt:     o.CreatedAt,
	}
}

func toHeaderResponses(orders []order.Order) []orderHeaderResponse {
	out := make([]orderHeaderResponse, len(orders))
	for i, o := range orders {
		out[i] = toHeaderResponse(o)
	}
	return out
}
