package handler

import (
	"net/http"
)

type productResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	UnitWeightGrams int64   `json:"unitWeightGrams"`
}

// ListProducts returns the enabled catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			Price:           p.Price.InexactFloat64(),
			UnitWeightGrams: p.UnitWeightGrams,
		}
	}
	respondJSON(w, http.StatusOK, out)
}
