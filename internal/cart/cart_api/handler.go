package cart_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/cart"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CartService *cart.CartService
	Logger      *logger.Logger
}

func NewHandler(cartService *cart.CartService, log *logger.Logger) *Handler {
	return &Handler{CartService: cartService, Logger: log}
}

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCart: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.CartService.Create(userID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCart: %v", err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cartID := chi.URLParam(r, "cartID")
	h.Logger.Info("API", fmt.Sprintf("GetCart: cartID=%s", cartID))

	cartData, err := h.CartService.Get(cartID, userID)
	if err != nil {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartData)
}

func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var (
		carts []models.Cart
		err   error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		carts, err = h.CartService.ListByStatus(userID, models.CartStatus(status))
	} else {
		carts, err = h.CartService.List(userID)
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCarts: %v", err))
		http.Error(w, "Could not list carts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(carts)
}

func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cartID := chi.URLParam(r, "cartID")

	var req models.UpdateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.CartService.Update(cartID, userID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCart: %v", err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cartID := chi.URLParam(r, "cartID")

	if err := h.CartService.Delete(cartID, userID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCart: %v", err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrCartNotEditable), errors.Is(err, cart.ErrInvalidStatus):
		return http.StatusConflict
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
