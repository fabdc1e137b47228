package domain

import "time"

// ProviderStatus is the closed set of outcomes a payment provider round-trip
// can have. Whatever shape the provider reports is translated into this
// variant at the boundary and nothing downstream sees the raw payload.
type ProviderStatus string

const (
	ProviderSuccess   ProviderStatus = "success"
	ProviderFailed    ProviderStatus = "failed"
	ProviderAbandoned ProviderStatus = "abandoned"
)

// ProviderStatusFrom maps a raw provider status string into the closed
// variant. Anything unrecognized counts as abandoned: the user closed the
// dialog without a terminal callback.
func ProviderStatusFrom(raw string) ProviderStatus {
	switch raw {
	case "success":
		return ProviderSuccess
	case "failed":
		return ProviderFailed
	default:
		return ProviderAbandoned
	}
}

// Code is the single-letter status tag the payment resource expects.
func (s ProviderStatus) Code() string {
	switch s {
	case ProviderSuccess:
		return "s"
	case ProviderFailed:
		return "f"
	default:
		return "a"
	}
}

// ProviderResult is what comes back from the provider for one attempt.
// Reference is empty when the dialog was closed without completing.
type ProviderResult struct {
	Status    ProviderStatus
	Reference string
}

type AttemptStatus string

const (
	AttemptPending    AttemptStatus = "PENDING"
	AttemptSucceeded  AttemptStatus = "SUCCEEDED"
	AttemptFailed     AttemptStatus = "FAILED"
	AttemptAbandoned  AttemptStatus = "ABANDONED"
	AttemptUnrecorded AttemptStatus = "UNRECORDED" // provider succeeded, confirmation did not
)

// PaymentAttempt tracks one provider handoff. It never outlives a single
// checkout invocation; a retry creates a new attempt with a new reference.
type PaymentAttempt struct {
	Reference string
	Status    AttemptStatus
	Snapshot  *PurchaseSnapshot
	CreatedAt time.Time
}
