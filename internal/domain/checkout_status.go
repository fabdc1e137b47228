package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle             CheckoutStatus = "IDLE"
	CheckoutStatusSelecting        CheckoutStatus = "SELECTING"
	CheckoutStatusAwaitingProvider CheckoutStatus = "AWAITING_PROVIDER"
	CheckoutStatusConfirming       CheckoutStatus = "CONFIRMING"
	CheckoutStatusCleanup          CheckoutStatus = "CLEANUP"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:             {CheckoutStatusSelecting},
	CheckoutStatusSelecting:        {CheckoutStatusAwaitingProvider, CheckoutStatusIdle},
	CheckoutStatusAwaitingProvider: {CheckoutStatusConfirming, CheckoutStatusIdle},
	CheckoutStatusConfirming:       {CheckoutStatusCleanup, CheckoutStatusIdle},
	CheckoutStatusCleanup:          {CheckoutStatusIdle},
}

// CanTransitionTo reports whether moving from one checkout status to
// another is legal. Error exits land back on IDLE; there is no terminal
// state a flow can get stuck in.
func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
