package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/gigbite/backend/internal/middleware"
	"github.com/gigbite/backend/internal/models"
	"github.com/gigbite/backend/internal/repository"
)

// Handler serves the read-side aggregations: dashboard stats, notifications
// and admin user management. Pure reads over the stores, no invariants of
// their own.
type Handler struct {
	users         *repository.UserRepo
	tasks         *repository.TaskRepo
	submissions   *repository.SubmissionRepo
	withdrawals   *repository.WithdrawalRepo
	payments      *repository.PaymentRepo
	notifications *repository.NotificationRepo
	coins         *repository.CoinEntryRepo
	log           *slog.Logger
}

func NewHandler(
	users *repository.UserRepo,
	tasks *repository.TaskRepo,
	submissions *repository.SubmissionRepo,
	withdrawals *repository.WithdrawalRepo,
	payments *repository.PaymentRepo,
	notifications *repository.NotificationRepo,
	coins *repository.CoinEntryRepo,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		users:         users,
		tasks:         tasks,
		submissions:   submissions,
		withdrawals:   withdrawals,
		payments:      payments,
		notifications: notifications,
		coins:         coins,
		log:           log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetMe handles GET /api/v1/users/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.users.GetByEmail(r.Context(), p.Email)
	if err != nil {
		h.log.Error("get user", "email", p.Email, "error", err)
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":        user.Email,
		"name":         user.Name,
		"role":         user.Role,
		"coin_balance": user.CoinBalance,
		"created_at":   user.CreatedAt,
	})
}

// GetStats handles GET /api/v1/stats, role-dependent.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	switch p.Role {
	case models.RoleBuyer:
		h.buyerStats(w, r, p.Email)
	case models.RoleWorker:
		h.workerStats(w, r, p.Email)
	case models.RoleAdmin:
		h.AdminStats(w, r)
	default:
		http.Error(w, "forbidden", http.StatusForbidden)
	}
}

func (h *Handler) buyerStats(w http.ResponseWriter, r *http.Request, email string) {
	ctx := r.Context()
	taskCount, err := h.tasks.CountByBuyer(ctx, email)
	if err != nil {
		h.log.Error("buyer stats: task count", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pendingCount, err := h.submissions.CountPendingByBuyer(ctx, email)
	if err != nil {
		h.log.Error("buyer stats: pending count", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	purchased, err := h.payments.SumCoinsByBuyer(ctx, email)
	if err != nil {
		h.log.Error("buyer stats: purchased sum", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_count":          taskCount,
		"pending_submissions": pendingCount,
		"coins_purchased":     purchased,
	})
}

func (h *Handler) workerStats(w http.ResponseWriter, r *http.Request, email string) {
	ctx := r.Context()
	counts, err := h.submissions.CountByWorkerAndStatus(ctx, email)
	if err != nil {
		h.log.Error("worker stats: submission counts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	earnings, err := h.submissions.SumApprovedByWorker(ctx, email)
	if err != nil {
		h.log.Error("worker stats: earnings sum", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pendingCoins, err := h.withdrawals.SumPendingByWorker(ctx, email)
	if err != nil {
		h.log.Error("worker stats: pending withdrawals", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": map[string]int64{
			"pending":  counts[models.SubmissionStatusPending],
			"approved": counts[models.SubmissionStatusApproved],
			"rejected": counts[models.SubmissionStatusRejected],
		},
		"total_earnings":           earnings,
		"pending_withdrawal_coins": pendingCoins,
	})
}

// AdminStats handles GET /api/v1/admin/stats (admin only).
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roleCounts, err := h.users.CountByRole(ctx)
	if err != nil {
		h.log.Error("admin stats: role counts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	circulating, err := h.users.SumBalances(ctx)
	if err != nil {
		h.log.Error("admin stats: balance sum", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	escrowed, err := h.tasks.SumEscrow(ctx)
	if err != nil {
		h.log.Error("admin stats: escrow sum", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	volume, err := h.payments.TotalVolumeCents(ctx)
	if err != nil {
		h.log.Error("admin stats: payment volume", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users_by_role":        roleCounts,
		"coins_in_circulation": circulating,
		"coins_escrowed":       escrowed,
		"payment_volume_cents": volume,
	})
}

// ListNotifications handles GET /api/v1/notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.notifications.ListByEmail(r.Context(), p.Email)
	if err != nil {
		h.log.Error("list notifications", "email", p.Email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkNotificationRead handles PATCH /api/v1/notifications/{id}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), id, p.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("mark notification read", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCoinLedger handles GET /api/v1/coin-ledger: the caller's own audit trail.
func (h *Handler) ListCoinLedger(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	entries, err := h.coins.ListByEmail(r.Context(), p.Email, 100)
	if err != nil {
		h.log.Error("list coin ledger", "email", p.Email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ListMyWithdrawals handles GET /api/v1/withdrawals/mine (worker only).
func (h *Handler) ListMyWithdrawals(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.withdrawals.ListByWorker(r.Context(), p.Email)
	if err != nil {
		h.log.Error("list worker withdrawals", "email", p.Email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListMyPayments handles GET /api/v1/payments (buyer only).
func (h *Handler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.payments.ListByBuyer(r.Context(), p.Email)
	if err != nil {
		h.log.Error("list buyer payments", "email", p.Email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListUsers handles GET /api/v1/admin/users (admin only).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.log.Error("list users", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// SetUserRole handles PATCH /api/v1/admin/users/{email} (admin only).
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if body.Role != models.RoleWorker && body.Role != models.RoleBuyer && body.Role != models.RoleAdmin {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	if err := h.users.SetRole(r.Context(), email, body.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("set user role", "email", email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteUser handles DELETE /api/v1/admin/users/{email} (admin only).
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if err := h.users.Delete(r.Context(), email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete user", "email", email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
