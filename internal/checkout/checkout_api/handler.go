package checkout_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/checkout"
	"ms-marketplace/internal/ledger"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/receipt"
	"ms-marketplace/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Checkout *checkout.Service
	Ledger   *ledger.Service
	Receipts *receipt.Generator
	Logger   *logger.Logger
}

func NewHandler(checkoutService *checkout.Service, ledgerService *ledger.Service, receipts *receipt.Generator, log *logger.Logger) *Handler {
	return &Handler{
		Checkout: checkoutService,
		Ledger:   ledgerService,
		Receipts: receipts,
		Logger:   log,
	}
}

// Pay runs checkout for a cart. Precondition failures surface as HTTP
// errors; once the strategy has executed, the response is always the
// recorded transaction and its status field carries the outcome.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cartID := chi.URLParam(r, "cartID")

	var req models.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.Logger.LogPayment("PAY", cartID, fmt.Sprintf("method=%s user=%d", req.PaymentMethod, userID))

	tx, err := h.Checkout.Pay(cartID, userID, req.PaymentMethod, req.ExternalReference)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Pay: cart=%s: %v", cartID, err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("payment attempt recorded", tx))
}

func (h *Handler) GetCartTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cartID := chi.URLParam(r, "cartID")

	total, err := h.Checkout.GetCartTotal(cartID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("cart total", map[string]string{
		"cart_id": cartID,
		"total":   total.StringFixed(2),
	}))
}

func (h *Handler) ListTransactionsByCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cartID := chi.URLParam(r, "cartID")

	txs, err := h.Ledger.ListByCart(cartID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("transactions for cart", txs))
}

func (h *Handler) ListTransactionsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	txs, err := h.Ledger.ListByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("transactions for user", txs))
}

// GetReceipt renders the PDF receipt for a successful transaction.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	txID := chi.URLParam(r, "txID")

	tx, err := h.Ledger.GetForUser(txID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	pdfBytes, err := h.Receipts.Render(*tx)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetReceipt: tx=%s: %v", txID, err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", tx.ID))
	w.Write(pdfBytes)
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, checkout.ErrCartNotFound),
		errors.Is(err, ledger.ErrCartNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, checkout.ErrCartNotPayable),
		errors.Is(err, checkout.ErrCartCancelled),
		errors.Is(err, checkout.ErrZeroTotal),
		errors.Is(err, checkout.ErrCheckoutBusy):
		status = http.StatusConflict
	case errors.Is(err, checkout.ErrUnsupportedMethod),
		errors.Is(err, receipt.ErrNotPaid):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, utils.ErrorResponse("request failed", err.Error()))
}
