package domain

import "errors"

var (
	// ErrNotFound: the entity is absent from both cache and store.
	ErrNotFound = errors.New("not found")

	// ErrSchemaMismatch: a new row is missing its id field, or the sheet
	// header no longer carries a required column.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// Quote errors.
	ErrRateNotFound  = errors.New("no rate for currency pair")
	ErrBelowMinimum  = errors.New("amount below pair minimum")
	ErrInvalidAmount = errors.New("unparsable amount")

	// Referral validation errors.
	ErrSelfReferral      = errors.New("cannot name yourself as referrer")
	ErrDuplicateReferral = errors.New("referrer already named")
	ErrUnknownReferral   = errors.New("referrer unknown or not active")
	ErrSlotsFull         = errors.New("both referral slots already filled")

	// Lifecycle errors.
	ErrStateConflict  = errors.New("action not valid in current state")
	ErrNotCancellable = errors.New("request can no longer be cancelled")
)
