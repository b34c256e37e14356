package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigbite/backend/internal/models"
)

// storeTimeout bounds every coordinator operation. A store that does not
// answer in time surfaces as ErrUnavailable, never as an indefinite block.
const storeTimeout = 5 * time.Second

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CoinLedger is the only path to a balance mutation.
type CoinLedger interface {
	ApplyDelta(ctx context.Context, tx pgx.Tx, email string, amount int64, entryType string, refID *uuid.UUID) error
}

// TaskStore owns task lifecycle and the remaining-slots counter.
type TaskStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Task, error)
	ClaimSlotTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ReleaseSlotTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ReduceCostTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ListOpen(ctx context.Context) ([]*models.Task, error)
	ListByBuyer(ctx context.Context, email string) ([]*models.Task, error)
}

// SubmissionStore owns submission lifecycle.
type SubmissionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
	ListByWorker(ctx context.Context, email string, page, limit int) ([]*models.Submission, int64, error)
	ListPendingByBuyer(ctx context.Context, email string) ([]*models.Submission, error)
	ListApprovedByWorker(ctx context.Context, email string) ([]*models.Submission, error)
	CountPendingByTaskTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) (int64, error)
}

// WithdrawalStore owns withdrawal request lifecycle.
type WithdrawalStore interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	ApproveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Withdrawal, error)
	ListPending(ctx context.Context) ([]*models.Withdrawal, error)
}

// PaymentStore appends purchase records.
type PaymentStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error
}

// UserStore is the read side of user accounts the coordinator needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Notifier appends a user-facing event. Best effort: a failure here never
// rolls back the transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, email, message, actionPath string) error
}

// PostTaskInput carries everything a buyer supplies when posting a task.
type PostTaskInput struct {
	Title           string    `json:"title"`
	Detail          string    `json:"detail"`
	Category        string    `json:"category"`
	TotalCost       int64     `json:"total_cost"`
	RequiredWorkers int32     `json:"required_workers"`
	PayableAmount   int64     `json:"payable_amount"`
	Deadline        time.Time `json:"deadline"`
}

// SubmissionPage is one page of a worker's submissions.
type SubmissionPage struct {
	Items      []*models.Submission `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

// Service is the marketplace coordinator surface consumed by the HTTP layer.
type Service interface {
	PostTask(ctx context.Context, buyerEmail string, in PostTaskInput) (*models.Task, error)
	SubmitWork(ctx context.Context, workerEmail string, taskID uuid.UUID, proof json.RawMessage) (*models.Submission, error)
	ApproveSubmission(ctx context.Context, buyerEmail string, submissionID uuid.UUID) error
	RejectSubmission(ctx context.Context, buyerEmail string, submissionID uuid.UUID) error
	DeleteTask(ctx context.Context, requesterEmail string, taskID uuid.UUID) error
	RequestWithdrawal(ctx context.Context, workerEmail string, coins int64) (*models.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID uuid.UUID) error
	SavePayment(ctx context.Context, buyerEmail string, coins, amountCents int64, intentID string) (*models.Payment, error)

	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListOpenTasks(ctx context.Context) ([]*models.Task, error)
	ListBuyerTasks(ctx context.Context, email string) ([]*models.Task, error)
	ListWorkerSubmissions(ctx context.Context, email string, page, limit int) (*SubmissionPage, error)
	ListApprovedSubmissions(ctx context.Context, workerEmail string) ([]*models.Submission, error)
	ListPendingSubmissions(ctx context.Context, buyerEmail string) ([]*models.Submission, error)
	ListPendingWithdrawals(ctx context.Context) ([]*models.Withdrawal, error)
}

// Coordinator sequences multi-store transitions. Every sequence from the
// lifecycle table runs inside one transaction, so a crash mid-sequence leaves
// either all of its writes or none of them.
type Coordinator struct {
	db          TxBeginner
	ledger      CoinLedger
	tasks       TaskStore
	submissions SubmissionStore
	withdrawals WithdrawalStore
	payments    PaymentStore
	users       UserStore
	proofs      *ProofValidator
	notifier    Notifier
	log         *slog.Logger
}

func NewCoordinator(
	db TxBeginner,
	ledger CoinLedger,
	tasks TaskStore,
	submissions SubmissionStore,
	withdrawals WithdrawalStore,
	payments PaymentStore,
	users UserStore,
	proofs *ProofValidator,
	notifier Notifier,
	log *slog.Logger,
) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		db:          db,
		ledger:      ledger,
		tasks:       tasks,
		submissions: submissions,
		withdrawals: withdrawals,
		payments:    payments,
		users:       users,
		proofs:      proofs,
		notifier:    notifier,
		log:         log,
	}
}

var _ Service = (*Coordinator)(nil)

// PostTask escrows the task's full budget from the buyer and inserts the task
// in one transaction. A buyer who cannot cover the budget gets
// ErrInsufficientFunds with no side effects.
func (c *Coordinator) PostTask(ctx context.Context, buyerEmail string, in PostTaskInput) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if c.proofs != nil && !c.proofs.Known(in.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	if in.TotalCost < 0 {
		return nil, fmt.Errorf("%w: total_cost must be >= 0", ErrInvalidInput)
	}
	if in.RequiredWorkers <= 0 {
		return nil, fmt.Errorf("%w: required_workers must be > 0", ErrInvalidInput)
	}
	if in.PayableAmount <= 0 {
		return nil, fmt.Errorf("%w: payable_amount must be > 0", ErrInvalidInput)
	}
	if in.PayableAmount*int64(in.RequiredWorkers) > in.TotalCost {
		return nil, fmt.Errorf("%w: total_cost cannot cover every slot's payout", ErrInvalidInput)
	}

	task := &models.Task{
		ID:              uuid.New(),
		BuyerEmail:      buyerEmail,
		Title:           in.Title,
		Detail:          in.Detail,
		Category:        in.Category,
		TotalCost:       in.TotalCost,
		RequiredWorkers: in.RequiredWorkers,
		PayableAmount:   in.PayableAmount,
		Deadline:        in.Deadline,
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, translate(err)
	}
	defer tx.Rollback(ctx)

	if err := c.ledger.ApplyDelta(ctx, tx, buyerEmail, -task.TotalCost, models.CoinEntryEscrowLock, &task.ID); err != nil {
		return nil, translate(err)
	}
	if err := c.tasks.CreateTx(ctx, tx, task); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, translate(err)
	}
	return task, nil
}

// SubmitWork claims one of the task's slots and inserts a pending submission
// in one transaction, so the task can never serve more workers than it
// posted. The proof payload is validated against the category schema first.
func (c *Coordinator) SubmitWork(ctx context.Context, workerEmail string, taskID uuid.UUID, proof json.RawMessage) (*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	task, err := c.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, translate(err)
	}
	if task.BuyerEmail == workerEmail {
		return nil, fmt.Errorf("%w: cannot submit to your own task", ErrForbidden)
	}
	if c.proofs != nil {
		if err := c.proofs.Validate(task.Category, proof); err != nil {
			return nil, err
		}
	}

	sub := &models.Submission{
		ID:            uuid.New(),
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		WorkerEmail:   workerEmail,
		BuyerEmail:    task.BuyerEmail,
		PayableAmount: task.PayableAmount,
		Proof:         proof,
		Status:        models.SubmissionStatusPending,
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, translate(err)
	}
	defer tx.Rollback(ctx)

	if err := c.tasks.ClaimSlotTx(ctx, tx, task.ID); err != nil {
		return nil, translate(err)
	}
	if err := c.submissions.CreateTx(ctx, tx, sub); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, translate(err)
	}

	c.notify(ctx, task.BuyerEmail,
		fmt.Sprintf("%s submitted work for %q", workerEmail, task.Title),
		"/dashboard/submissions/pending")
	return sub, nil
}

// ApproveSubmission finalizes a pending submission and pays the worker. The
// status flip, the escrow reduction and the worker credit commit together:
// approving never credits without reducing escrow, and vice versa.
func (c *Coordinator) ApproveSubmission(ctx context.Context, buyerEmail string, submissionID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	sub, err := c.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return translate(err)
	}
	if sub.BuyerEmail != buyerEmail {
		return ErrForbidden
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return translate(err)
	}
	defer tx.Rollback(ctx)

	if err := c.submissions.SetStatusTx(ctx, tx, submissionID, models.SubmissionStatusApproved); err != nil {
		return translate(err)
	}
	if err := c.tasks.ReduceCostTx(ctx, tx, sub.TaskID, sub.PayableAmount); err != nil {
		return translate(err)
	}
	if err := c.ledger.ApplyDelta(ctx, tx, sub.WorkerEmail, sub.PayableAmount, models.CoinEntryTaskEarning, &sub.TaskID); err != nil {
		return translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(err)
	}

	c.notify(ctx, sub.WorkerEmail,
		fmt.Sprintf("Your submission for %q was approved, %d coins credited", sub.TaskTitle, sub.PayableAmount),
		"/dashboard/submissions")
	return nil
}

// RejectSubmission finalizes a pending submission without payment and frees
// its slot back for other workers.
func (c *Coordinator) RejectSubmission(ctx context.Context, buyerEmail string, submissionID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	sub, err := c.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return translate(err)
	}
	if sub.BuyerEmail != buyerEmail {
		return ErrForbidden
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return translate(err)
	}
	defer tx.Rollback(ctx)

	if err := c.submissions.SetStatusTx(ctx, tx, submissionID, models.SubmissionStatusRejected); err != nil {
		return translate(err)
	}
	if err := c.tasks.ReleaseSlotTx(ctx, tx, sub.TaskID); err != nil {
		return translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(err)
	}

	c.notify(ctx, sub.WorkerEmail,
		fmt.Sprintf("Your submission for %q was rejected", sub.TaskTitle),
		"/dashboard/submissions")
	return nil
}

// DeleteTask refunds the task's remaining escrow to its buyer and removes the
// task. Blocked while any submission is still pending, so no worker's
// unresolved work can be abandoned. The task row is locked for the whole
// sequence so a concurrent approval cannot change the refund amount.
func (c *Coordinator) DeleteTask(ctx context.Context, requesterEmail string, taskID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return translate(err)
	}
	defer tx.Rollback(ctx)

	task, err := c.tasks.GetByIDForUpdateTx(ctx, tx, taskID)
	if err != nil {
		return translate(err)
	}
	if task.BuyerEmail != requesterEmail {
		return ErrForbidden
	}
	pending, err := c.submissions.CountPendingByTaskTx(ctx, tx, taskID)
	if err != nil {
		return translate(err)
	}
	if pending > 0 {
		return ErrPendingSubmissions
	}
	if task.TotalCost > 0 {
		if err := c.ledger.ApplyDelta(ctx, tx, task.BuyerEmail, task.TotalCost, models.CoinEntryEscrowRelease, &task.ID); err != nil {
			return translate(err)
		}
	}
	if err := c.tasks.DeleteTx(ctx, tx, taskID); err != nil {
		return translate(err)
	}
	return translate(tx.Commit(ctx))
}

// RequestWithdrawal records a worker's cash-out request. The balance is only
// pre-checked here; the debit happens at approval.
func (c *Coordinator) RequestWithdrawal(ctx context.Context, workerEmail string, coins int64) (*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if coins < models.MinWithdrawalCoins {
		return nil, fmt.Errorf("%w: minimum withdrawal is %d coins", ErrInvalidInput, models.MinWithdrawalCoins)
	}
	if coins%models.CoinsPerDollar != 0 {
		return nil, fmt.Errorf("%w: amount must be a multiple of %d coins", ErrInvalidInput, models.CoinsPerDollar)
	}
	user, err := c.users.GetByEmail(ctx, workerEmail)
	if err != nil {
		return nil, translate(err)
	}
	if user.CoinBalance < coins {
		return nil, ErrInsufficientFunds
	}

	w := &models.Withdrawal{
		ID:          uuid.New(),
		WorkerEmail: workerEmail,
		Coins:       coins,
		AmountCents: coins / models.CoinsPerDollar * 100,
		Status:      models.WithdrawalStatusPending,
	}
	if err := c.withdrawals.Create(ctx, w); err != nil {
		return nil, translate(err)
	}
	return w, nil
}

// ApproveWithdrawal debits the worker and marks the request approved in one
// transaction. The compare-and-set inside ApproveTx means a second approval
// of the same request cannot double-debit.
func (c *Coordinator) ApproveWithdrawal(ctx context.Context, withdrawalID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return translate(err)
	}
	defer tx.Rollback(ctx)

	w, err := c.withdrawals.ApproveTx(ctx, tx, withdrawalID)
	if err != nil {
		return translate(err)
	}
	if err := c.ledger.ApplyDelta(ctx, tx, w.WorkerEmail, -w.Coins, models.CoinEntryWithdrawal, &w.ID); err != nil {
		return translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(err)
	}

	c.notify(ctx, w.WorkerEmail,
		fmt.Sprintf("Your withdrawal of %d coins was approved", w.Coins),
		"/dashboard/withdrawals")
	return nil
}

// SavePayment records a completed coin purchase and credits the buyer in one
// transaction: every purchase record has exactly one corresponding credit.
func (c *Coordinator) SavePayment(ctx context.Context, buyerEmail string, coins, amountCents int64, intentID string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if coins <= 0 {
		return nil, fmt.Errorf("%w: coins must be > 0", ErrInvalidInput)
	}

	p := &models.Payment{
		ID:          uuid.New(),
		BuyerEmail:  buyerEmail,
		Coins:       coins,
		AmountCents: amountCents,
		IntentID:    intentID,
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, translate(err)
	}
	defer tx.Rollback(ctx)

	if err := c.payments.CreateTx(ctx, tx, p); err != nil {
		return nil, translate(err)
	}
	if err := c.ledger.ApplyDelta(ctx, tx, buyerEmail, coins, models.CoinEntryPurchase, &p.ID); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// --- read side ---
//
// Reads carry the same bounded timeout as the write paths: a store that does
// not answer surfaces as ErrUnavailable here too.

func (c *Coordinator) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	t, err := c.tasks.GetByID(ctx, id)
	return t, translate(err)
}

func (c *Coordinator) ListOpenTasks(ctx context.Context) ([]*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	list, err := c.tasks.ListOpen(ctx)
	return list, translate(err)
}

func (c *Coordinator) ListBuyerTasks(ctx context.Context, email string) ([]*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	list, err := c.tasks.ListByBuyer(ctx, email)
	return list, translate(err)
}

func (c *Coordinator) ListWorkerSubmissions(ctx context.Context, email string, page, limit int) (*SubmissionPage, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := c.submissions.ListByWorker(ctx, email, page, limit)
	if err != nil {
		return nil, translate(err)
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &SubmissionPage{Items: items, Total: total, Page: page, TotalPages: totalPages}, nil
}

func (c *Coordinator) ListApprovedSubmissions(ctx context.Context, workerEmail string) ([]*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	list, err := c.submissions.ListApprovedByWorker(ctx, workerEmail)
	return list, translate(err)
}

func (c *Coordinator) ListPendingSubmissions(ctx context.Context, buyerEmail string) ([]*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	list, err := c.submissions.ListPendingByBuyer(ctx, buyerEmail)
	return list, translate(err)
}

func (c *Coordinator) ListPendingWithdrawals(ctx context.Context) ([]*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	list, err := c.withdrawals.ListPending(ctx)
	return list, translate(err)
}

// notify appends a user-facing event. Failure is logged and swallowed: the
// transition that triggered it has already committed and stays committed.
func (c *Coordinator) notify(ctx context.Context, email, message, actionPath string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, email, message, actionPath); err != nil {
		c.log.Error("notification append failed", "email", email, "error", err)
	}
}
