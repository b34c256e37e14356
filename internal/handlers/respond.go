package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gigbite/backend/internal/market"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMarketError maps the coordinator's error taxonomy onto HTTP statuses.
// Unknown errors become 500 with a generic message; the detail stays in logs.
func writeMarketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, market.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, market.ErrInsufficientFunds):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": "insufficient funds"})
	case errors.Is(err, market.ErrAlreadyFinal):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already finalized"})
	case errors.Is(err, market.ErrPendingSubmissions):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "pending submissions exist"})
	case errors.Is(err, market.ErrNoSlots):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no slots available"})
	case errors.Is(err, market.ErrInvalidProof):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, market.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, market.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable, retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
