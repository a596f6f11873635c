package server

import (
	"net/http"

	"github.com/taxlens/invoice-analyzer/internal/httpx"
)

// listItems returns the catalog, optionally filtered by category, for
// the bill-generation form.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" {
		items, err := s.items.ListByCategory(r.Context(), category)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "list_items_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, items)
		return
	}
	items, err := s.items.List(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_items_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.items.Categories(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_categories_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}
