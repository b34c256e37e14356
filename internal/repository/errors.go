package repository

import "errors"

// Sentinel errors returned by the guarded compare-and-set writes. Callers
// translate these into the marketplace error taxonomy.
var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrNoSlots is returned when a slot claim would drive required_workers
	// below zero. The counter is clamped at zero, never negative.
	ErrNoSlots = errors.New("no slots available")
	// ErrAlreadyFinal is returned when a status transition targets an entity
	// that is no longer pending.
	ErrAlreadyFinal = errors.New("already in a terminal state")
	// ErrEscrowExhausted is returned when a cost reduction would drive a
	// task's remaining escrow below zero.
	ErrEscrowExhausted = errors.New("task escrow exhausted")
)
