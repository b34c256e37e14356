package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigbite/backend/internal/ledger"
	"github.com/gigbite/backend/internal/repository"
)

// The marketplace error taxonomy. Validation and ownership errors are
// detected before any mutation; everything here maps to a stable kind the
// HTTP layer translates into a status code.
var (
	// ErrNotFound: an entity id or email does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: role or ownership check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds: a debit would drive a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyFinal: transition attempted on a terminal-state entity.
	ErrAlreadyFinal = errors.New("already finalized")
	// ErrPendingSubmissions: task delete blocked by unresolved submissions.
	ErrPendingSubmissions = errors.New("pending submissions exist")
	// ErrNoSlots: the task has no open worker slots.
	ErrNoSlots = errors.New("no slots available")
	// ErrInvalidProof: submission proof failed schema validation.
	ErrInvalidProof = errors.New("invalid proof payload")
	// ErrInvalidInput: request parameters fail basic validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable: transient store failure or timeout, retryable.
	ErrUnavailable = errors.New("temporarily unavailable")
)

// translate maps store and ledger errors onto the taxonomy. Timeouts become
// ErrUnavailable so callers know a retry is safe to attempt.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ledger.ErrNoSuchAccount):
		return ErrNotFound
	case errors.Is(err, repository.ErrNoSlots):
		return ErrNoSlots
	case errors.Is(err, repository.ErrAlreadyFinal):
		return ErrAlreadyFinal
	case errors.Is(err, repository.ErrEscrowExhausted), errors.Is(err, ledger.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
