package router

import (
	"net/http"

	"github.com/gigbite/backend/internal/auth"
	"github.com/gigbite/backend/internal/dashboard"
	"github.com/gigbite/backend/internal/handlers"
	"github.com/gigbite/backend/internal/middleware"
	"github.com/gigbite/backend/internal/models"
)

// New wires every API route under /api/v1. Middleware chain per route:
// BearerAuth -> (RequireRole where the operation is role-gated) -> handler.
func New(
	authHandler *auth.Handler,
	taskHandler *handlers.TaskHandler,
	submissionHandler *handlers.SubmissionHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	paymentHandler *handlers.PaymentHandler,
	dashHandler *dashboard.Handler,
	validator middleware.TokenValidator,
) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.BearerAuth(validator)
	buyer := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(models.RoleBuyer)(h))
	}
	worker := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(models.RoleWorker)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(models.RoleAdmin)(h))
	}

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("GET /api/v1/users/me", authed(http.HandlerFunc(dashHandler.GetMe)))

	mux.Handle("POST /api/v1/tasks", buyer(taskHandler.CreateTask))
	mux.Handle("GET /api/v1/tasks", authed(http.HandlerFunc(taskHandler.ListOpenTasks)))
	mux.Handle("GET /api/v1/tasks/mine", buyer(taskHandler.ListMyTasks))
	mux.Handle("GET /api/v1/tasks/{id}", authed(http.HandlerFunc(taskHandler.GetTask)))
	mux.Handle("DELETE /api/v1/tasks/{id}", buyer(taskHandler.DeleteTask))
	mux.Handle("POST /api/v1/tasks/{id}/submissions", worker(submissionHandler.SubmitWork))

	mux.Handle("GET /api/v1/submissions/mine", worker(submissionHandler.ListMine))
	mux.Handle("GET /api/v1/submissions/approved", worker(submissionHandler.ListApproved))
	mux.Handle("GET /api/v1/submissions/pending", buyer(submissionHandler.ListPending))
	mux.Handle("PATCH /api/v1/submissions/{id}/approve", buyer(submissionHandler.Approve))
	mux.Handle("PATCH /api/v1/submissions/{id}/reject", buyer(submissionHandler.Reject))

	mux.Handle("POST /api/v1/withdrawals", worker(withdrawalHandler.Request))
	mux.Handle("GET /api/v1/withdrawals", admin(withdrawalHandler.ListPending))
	mux.Handle("GET /api/v1/withdrawals/mine", worker(dashHandler.ListMyWithdrawals))
	mux.Handle("PATCH /api/v1/withdrawals/{id}/approve", admin(withdrawalHandler.Approve))

	mux.Handle("POST /api/v1/payments/intent", buyer(paymentHandler.CreateIntent))
	mux.Handle("POST /api/v1/payments", buyer(paymentHandler.SavePayment))
	mux.Handle("GET /api/v1/payments", buyer(dashHandler.ListMyPayments))

	mux.Handle("GET /api/v1/notifications", authed(http.HandlerFunc(dashHandler.ListNotifications)))
	mux.Handle("PATCH /api/v1/notifications/{id}/read", authed(http.HandlerFunc(dashHandler.MarkNotificationRead)))
	mux.Handle("GET /api/v1/coin-ledger", authed(http.HandlerFunc(dashHandler.ListCoinLedger)))

	mux.Handle("GET /api/v1/stats", authed(http.HandlerFunc(dashHandler.GetStats)))
	mux.Handle("GET /api/v1/admin/stats", admin(dashHandler.AdminStats))
	mux.Handle("GET /api/v1/admin/users", admin(dashHandler.ListUsers))
	mux.Handle("PATCH /api/v1/admin/users/{email}", admin(dashHandler.SetUserRole))
	mux.Handle("DELETE /api/v1/admin/users/{email}", admin(dashHandler.DeleteUser))

	return mux
}
