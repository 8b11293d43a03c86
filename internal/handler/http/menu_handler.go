package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/food-ordering/internal/catalog"
)

type MenuHandler struct {
	catalog catalog.Repository
}

func NewMenuHandler(catalogRepo catalog.Repository) *MenuHandler {
	return &MenuHandler{catalog: catalogRepo}
}

func (h *MenuHandler) RegisterRoutes(router chi.Router) {
	router.Get("/categories", h.handleListCategories)
	router.Get("/menu", h.handleListMenu)
}

func (h *MenuHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		respondWithError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// handleListMenu lists available items, optionally filtered by
// ?category_id=N.
func (h *MenuHandler) handleListMenu(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid category_id parameter")
			return
		}
		categoryID = &id
	}

	items, err := h.catalog.ListItems(r.Context(), categoryID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list menu items")
		respondWithError(w, http.StatusInternalServerError, "Failed to list menu items")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}
