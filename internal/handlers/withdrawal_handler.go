package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/gigbite/backend/internal/market"
	"github.com/gigbite/backend/internal/middleware"
)

type WithdrawalHandler struct {
	Svc    market.Service
	Logger *slog.Logger
}

type requestWithdrawalRequest struct {
	Coins int64 `json:"coins"`
}

// Request handles POST /api/v1/withdrawals (worker only).
func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req requestWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	wd, err := h.Svc.RequestWithdrawal(r.Context(), p.Email, req.Coins)
	if err != nil {
		h.Logger.Error("request withdrawal", "worker", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wd)
}

// ListPending handles GET /api/v1/withdrawals (admin only).
func (h *WithdrawalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListPendingWithdrawals(r.Context())
	if err != nil {
		h.Logger.Error("list pending withdrawals", "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Approve handles PATCH /api/v1/withdrawals/{id}/approve (admin only).
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid withdrawal id"})
		return
	}
	if err := h.Svc.ApproveWithdrawal(r.Context(), id); err != nil {
		h.Logger.Error("approve withdrawal", "withdrawal_id", id, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}
