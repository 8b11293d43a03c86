package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/food-ordering/internal/auth"
	"github.com/vasiliy-maslov/food-ordering/internal/order"
)

type CheckoutRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"required,max=15"`
	Address string `json:"address" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	sessions *Sessions
	validate *validator.Validate
}

func NewOrderHandler(service order.Service, sessions *Sessions) *OrderHandler {
	return &OrderHandler{
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireAuth)
		r.Post("/checkout", h.handleCheckout)
		r.Get("/orders", h.handleListOrders)
		r.Get("/orders/{orderID}", h.handleGetOrder)
		r.Patch("/orders/{orderID}/status", h.handleUpdateStatus)
		r.Get("/admin/summary", h.handleSummary)
	})
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	orderID, err := h.service.Checkout(r.Context(), identity, order.CheckoutInput{
		CustomerName:    req.Name,
		CustomerPhone:   req.Phone,
		DeliveryAddress: req.Address,
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			respondWithError(w, http.StatusBadRequest, "Cart is empty")
			return
		}
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("Failed to checkout via service")
		respondWithError(w, http.StatusInternalServerError, "Order could not be placed")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]int64{"order_id": orderID})
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	orders, err := h.service.List(r.Context(), identity)
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("Failed to list orders via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.service.GetByID(r.Context(), identity, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("Failed to get order via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	newStatus, err := h.service.SetStatus(r.Context(), identity, orderID, req.Status)
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			clientMessage = "Admin access required"
		case errors.Is(err, order.ErrInvalidStatus):
			clientMessage = "Unknown order status"
		case errors.Is(err, order.ErrOrderNotFound):
			clientMessage = "Order not found"
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("Failed to update order status via service")
			clientMessage = "Failed to update order status"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "status": newStatus})
}

func (h *OrderHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	summary, err := h.service.Summary(r.Context(), identity)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		log.Error().Err(err).Msg("Failed to get order summary via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to get summary")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
