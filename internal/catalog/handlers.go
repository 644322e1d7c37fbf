package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kedai-dev/checkout-api/internal/common"
)

// Handler exposes the public product endpoints.
type Handler struct {
	Svc *Service
}

// List handles GET /products.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := common.ParseLimitOffset(r, 20, 100)
	result, err := h.Svc.List(r.Context(), ListParams{
		Query:  r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSONData(w, http.StatusOK, result)
}

// Get handles GET /products/{slug}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.Svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	common.JSONData(w, http.StatusOK, product)
}
