package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/gigbite/backend/internal/market"
	"github.com/gigbite/backend/internal/middleware"
)

type SubmissionHandler struct {
	Svc    market.Service
	Logger *slog.Logger
}

type submitWorkRequest struct {
	Proof json.RawMessage `json:"proof"`
}

// SubmitWork handles POST /api/v1/tasks/{id}/submissions (worker only).
func (h *SubmissionHandler) SubmitWork(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	var req submitWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	sub, err := h.Svc.SubmitWork(r.Context(), p.Email, taskID, req.Proof)
	if err != nil {
		h.Logger.Error("submit work", "worker", p.Email, "task_id", taskID, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ListMine handles GET /api/v1/submissions/mine?page=&limit= (worker only).
func (h *SubmissionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := h.Svc.ListWorkerSubmissions(r.Context(), p.Email, page, limit)
	if err != nil {
		h.Logger.Error("list worker submissions", "worker", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListApproved handles GET /api/v1/submissions/approved (worker only): the
// worker's earnings history.
func (h *SubmissionHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	list, err := h.Svc.ListApprovedSubmissions(r.Context(), p.Email)
	if err != nil {
		h.Logger.Error("list approved submissions", "worker", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPending handles GET /api/v1/submissions/pending (buyer only).
func (h *SubmissionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	list, err := h.Svc.ListPendingSubmissions(r.Context(), p.Email)
	if err != nil {
		h.Logger.Error("list pending submissions", "buyer", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Approve handles PATCH /api/v1/submissions/{id}/approve (buyer only).
func (h *SubmissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.finalize(w, r, true)
}

// Reject handles PATCH /api/v1/submissions/{id}/reject (buyer only).
func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.finalize(w, r, false)
}

func (h *SubmissionHandler) finalize(w http.ResponseWriter, r *http.Request, approve bool) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid submission id"})
		return
	}
	if approve {
		err = h.Svc.ApproveSubmission(r.Context(), p.Email, id)
	} else {
		err = h.Svc.RejectSubmission(r.Context(), p.Email, id)
	}
	if err != nil {
		h.Logger.Error("finalize submission", "submission_id", id, "approve", approve, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
