package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/food-ordering/internal/auth"
	"github.com/vasiliy-maslov/food-ordering/internal/cart"
)

type AddToCartRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

type UpdateCartRequest struct {
	// Zero or negative removes the item from the cart.
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items []cart.Line `json:"items"`
	Total string      `json:"total"`
}

type CartHandler struct {
	carts    *cart.Service
	sessions *Sessions
	validate *validator.Validate
}

func NewCartHandler(carts *cart.Service, sessions *Sessions) *CartHandler {
	return &CartHandler{
		carts:    carts,
		sessions: sessions,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Use(h.sessions.RequireAuth)
		r.Get("/", h.handleViewCart)
		r.Post("/items", h.handleAddItem)
		r.Put("/items/{itemID}", h.handleUpdateItem)
	})
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	// The item id is accepted without a catalog lookup; a dangling id
	// is dropped later when the cart is resolved.
	h.carts.Add(identity.UserID, req.ItemID)

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Added to cart!"})
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	var req UpdateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	h.carts.SetQuantity(identity.UserID, itemID, req.Quantity)

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	lines, total, err := h.carts.Snapshot(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("Failed to resolve cart")
		respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	respondWithJSON(w, http.StatusOK, CartResponse{
		Items: lines,
		Total: total.StringFixed(2),
	})
}
