package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/gigbite/backend/internal/market"
	"github.com/gigbite/backend/internal/middleware"
)

// TaskHandler serves the task endpoints. All mutation goes through the
// coordinator; the handler only decodes, authorizes and translates errors.
type TaskHandler struct {
	Svc    market.Service
	Logger *slog.Logger
}

// CreateTask handles POST /api/v1/tasks (buyer only).
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var in market.PostTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	task, err := h.Svc.PostTask(r.Context(), p.Email, in)
	if err != nil {
		h.Logger.Error("post task", "buyer", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// ListOpenTasks handles GET /api/v1/tasks.
func (h *TaskHandler) ListOpenTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Svc.ListOpenTasks(r.Context())
	if err != nil {
		h.Logger.Error("list open tasks", "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ListMyTasks handles GET /api/v1/tasks/mine (buyer only).
func (h *TaskHandler) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	tasks, err := h.Svc.ListBuyerTasks(r.Context(), p.Email)
	if err != nil {
		h.Logger.Error("list buyer tasks", "buyer", p.Email, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	task, err := h.Svc.GetTask(r.Context(), id)
	if err != nil {
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/tasks/{id} (buyer only, own task).
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	if err := h.Svc.DeleteTask(r.Context(), p.Email, id); err != nil {
		h.Logger.Error("delete task", "task_id", id, "error", err)
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
