package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gigbite/backend/internal/market"
	"github.com/gigbite/backend/internal/middleware"
	"github.com/gigbite/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// stubService returns canned values; err (when set) is returned by every
// mutating call so the error-to-status mapping can be asserted per taxonomy
// entry.
type stubService struct {
	err        error
	task       *models.Task
	submission *models.Submission
	withdrawal *models.Withdrawal
	payment    *models.Payment
}

func (s *stubService) PostTask(_ context.Context, buyerEmail string, in market.PostTaskInput) (*models.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.task != nil {
		return s.task, nil
	}
	return &models.Task{
		ID:              uuid.New(),
		BuyerEmail:      buyerEmail,
		Title:           in.Title,
		Category:        in.Category,
		TotalCost:       in.TotalCost,
		RequiredWorkers: in.RequiredWorkers,
		PayableAmount:   in.PayableAmount,
	}, nil
}

func (s *stubService) SubmitWork(context.Context, string, uuid.UUID, json.RawMessage) (*models.Submission, error) {
	return s.submission, s.err
}

func (s *stubService) ApproveSubmission(context.Context, string, uuid.UUID) error { return s.err }
func (s *stubService) RejectSubmission(context.Context, string, uuid.UUID) error  { return s.err }
func (s *stubService) DeleteTask(context.Context, string, uuid.UUID) error        { return s.err }

func (s *stubService) RequestWithdrawal(context.Context, string, int64) (*models.Withdrawal, error) {
	return s.withdrawal, s.err
}

func (s *stubService) ApproveWithdrawal(context.Context, uuid.UUID) error { return s.err }

func (s *stubService) SavePayment(context.Context, string, int64, int64, string) (*models.Payment, error) {
	return s.payment, s.err
}

func (s *stubService) GetTask(context.Context, uuid.UUID) (*models.Task, error) {
	return s.task, s.err
}

func (s *stubService) ListOpenTasks(context.Context) ([]*models.Task, error) { return nil, s.err }

func (s *stubService) ListBuyerTasks(context.Context, string) ([]*models.Task, error) {
	return nil, s.err
}

func (s *stubService) ListWorkerSubmissions(context.Context, string, int, int) (*market.SubmissionPage, error) {
	return &market.SubmissionPage{}, s.err
}

func (s *stubService) ListApprovedSubmissions(context.Context, string) ([]*models.Submission, error) {
	return nil, s.err
}

func (s *stubService) ListPendingSubmissions(context.Context, string) ([]*models.Submission, error) {
	return nil, s.err
}

func (s *stubService) ListPendingWithdrawals(context.Context) ([]*models.Withdrawal, error) {
	return nil, s.err
}

var _ market.Service = (*stubService)(nil)

// injectPrincipal puts an authenticated identity into the request context.
func injectPrincipal(r *http.Request, email, role string) *http.Request {
	ctx := middleware.WithPrincipal(r.Context(), &middleware.Principal{Email: email, Role: role})
	return r.WithContext(ctx)
}

// =====================================================================
// POST /api/v1/tasks
// =====================================================================

func TestCreateTask_ValidPayload(t *testing.T) {
	h := &TaskHandler{Svc: &stubService{}, Logger: slog.Default()}

	body := `{
		"title": "share our launch post",
		"category": "social_share",
		"total_cost": 40,
		"required_workers": 4,
		"payable_amount": 10
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
	req = injectPrincipal(req, "buyer@example.com", models.RoleBuyer)
	rec := httptest.NewRecorder()

	h.CreateTask(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var task models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if task.BuyerEmail != "buyer@example.com" {
		t.Errorf("buyer_email: got %q", task.BuyerEmail)
	}
	if task.TotalCost != 40 {
		t.Errorf("total_cost: got %d, want 40", task.TotalCost)
	}
}

func TestCreateTask_InvalidJSON(t *testing.T) {
	h := &TaskHandler{Svc: &stubService{}, Logger: slog.Default()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"title":`))
	req = injectPrincipal(req, "buyer@example.com", models.RoleBuyer)
	rec := httptest.NewRecorder()

	h.CreateTask(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTask_NoPrincipal(t *testing.T) {
	h := &TaskHandler{Svc: &stubService{}, Logger: slog.Default()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.CreateTask(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// =====================================================================
// DELETE /api/v1/tasks/{id} — error taxonomy mapping
// =====================================================================

func TestDeleteTask_StatusMapping(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
	}{
		{nil, http.StatusOK},
		{market.ErrNotFound, http.StatusNotFound},
		{market.ErrForbidden, http.StatusForbidden},
		{market.ErrPendingSubmissions, http.StatusConflict},
		{market.ErrUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		name := "ok"
		if tc.err != nil {
			name = tc.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			h := &TaskHandler{Svc: &stubService{err: tc.err}, Logger: slog.Default()}

			url := fmt.Sprintf("/api/v1/tasks/%s", uuid.New())
			req := httptest.NewRequest(http.MethodDelete, url, nil)
			req.SetPathValue("id", strings.TrimPrefix(url, "/api/v1/tasks/"))
			req = injectPrincipal(req, "buyer@example.com", models.RoleBuyer)
			rec := httptest.NewRecorder()

			h.DeleteTask(rec, req)

			if rec.Code != tc.wantCode {
				t.Errorf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteTask_BadID(t *testing.T) {
	h := &TaskHandler{Svc: &stubService{}, Logger: slog.Default()}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	req = injectPrincipal(req, "buyer@example.com", models.RoleBuyer)
	rec := httptest.NewRecorder()

	h.DeleteTask(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// =====================================================================
// Withdrawal handler — 402 on insufficient funds
// =====================================================================

func TestRequestWithdrawal_InsufficientFunds(t *testing.T) {
	h := &WithdrawalHandler{Svc: &stubService{err: market.ErrInsufficientFunds}, Logger: slog.Default()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", strings.NewReader(`{"coins":400}`))
	req = injectPrincipal(req, "worker@example.com", models.RoleWorker)
	rec := httptest.NewRecorder()

	h.Request(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequestWithdrawal_Created(t *testing.T) {
	wd := &models.Withdrawal{ID: uuid.New(), WorkerEmail: "worker@example.com", Coins: 400, AmountCents: 2000, Status: models.WithdrawalStatusPending}
	h := &WithdrawalHandler{Svc: &stubService{withdrawal: wd}, Logger: slog.Default()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", strings.NewReader(`{"coins":400}`))
	req = injectPrincipal(req, "worker@example.com", models.RoleWorker)
	rec := httptest.NewRecorder()

	h.Request(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.Withdrawal
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AmountCents != 2000 {
		t.Errorf("amount_cents: got %d, want 2000", got.AmountCents)
	}
}
