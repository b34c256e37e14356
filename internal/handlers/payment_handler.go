package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gigbite/backend/internal/market"
	"github.com/gigbite/backend/internal/middleware"
	"github.com/gigbite/backend/internal/models"
)

// IntentCreator creates payment intents at the external provider.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountCents int64, currency, description string) (id, clientSecret string, err error)
}

type PaymentHandler struct {
	Svc     market.Service
	Intents IntentCreator
	Logger  *slog.Logger
}

type createIntentRequest struct {
	Coins int64 `json:"coins"`
}

type createIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
}

// CreateIntent handles POST /api/v1/payments/intent (buyer only). Coins map
// 1:1 to fiat via the platform rate.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Coins <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coins must be > 0"})
		return
	}
	amountCents := req.Coins / models.CoinsPerDollar * 100
	if amountCents <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("minimum purchase is %d coins", models.CoinsPerDollar)})
		return
	}
	id, secret, err := h.Intents.CreateIntent(r.Context(), amountCents, "usd",
		fmt.Sprintf("%d coins for %s", req.Coins, p.Email))
	if err != nil {
		h.Logger.Error("create payment intent", "buyer", p.Email, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, createIntentResponse{IntentID: id, ClientSecret: secret, AmountCents: amountCents})
}

type savePaymentRequest struct {
	Coins       int64  `json:"coins"`
	AmountCents int64  `json:"amount_cents"`
	IntentID    string `json:"intent_id"`
}

// SavePayment handles POST /api/v1/payments (buyer only). Records the
// completed purchase and credits the buyer.
func (h *PaymentHandler) SavePayment(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req savePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	payment, err := h.Svc.SavePayment(r.Context(), p.Email, req.Coins, req.AmountCents, req.IntentID)
	if err != nil {
		h.Logger.Error("save payment", "buyer", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}
