package checkout

import "errors"

var (
	// Guard rejections: no side effect has happened yet.
	ErrNotAuthenticated = errors.New("sign in to check out")
	ErrEmptySelection   = errors.New("select at least one video CV to check out")
	ErrNotIdle          = errors.New("a checkout is already in progress")

	// Provider-level failures: no money moved, no record created, cart untouched.
	ErrPaymentFailed    = errors.New("payment was not completed")
	ErrPaymentAbandoned = errors.New("payment window was closed before completing")

	// The provider reported success but the confirmation did not land.
	// Money likely moved with no record; this must never look like a plain
	// payment failure.
	ErrPaidNotRecorded = errors.New("payment succeeded but could not be recorded, contact support with your payment reference")

	ErrNoAttempt         = errors.New("no payment attempt in flight")
	ErrReferenceMismatch = errors.New("provider reference does not match the attempt in flight")
)
