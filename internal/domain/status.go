package domain

// SessionStatus represents the state of a checkout session
type SessionStatus string

const (
	StatusIncomplete         SessionStatus = "incomplete"
	StatusReadyForPayment    SessionStatus = "ready_for_payment"
	StatusCompleted          SessionStatus = "completed"
	StatusRequiresEscalation SessionStatus = "requires_escalation"
)

// allowedTransitions defines the valid state transitions.
// The key is the current status, the value the set of valid target statuses.
// Create and update recompute the status from scratch, so incomplete and
// ready_for_payment can flip either way; completed is terminal.
var allowedTransitions = map[SessionStatus][]SessionStatus{
	StatusIncomplete: {
		StatusIncomplete,
		StatusReadyForPayment,
	},
	StatusReadyForPayment: {
		StatusIncomplete,
		StatusReadyForPayment,
		StatusCompleted,
	},
	StatusCompleted:          {},
	StatusRequiresEscalation: {},
}

// CanTransitionTo checks if a transition between two statuses is allowed.
func CanTransitionTo(from, to SessionStatus) bool {
	allowed, exists := allowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRequiresEscalation
}

// MostSevere picks the dominant status when merging validator results.
// Aggregation must be commutative: incomplete wins over ready_for_payment
// no matter the order the validators report in.
func MostSevere(a, b SessionStatus) SessionStatus {
	if a == StatusIncomplete || b == StatusIncomplete {
		return StatusIncomplete
	}
	return a
}

// String representation (for logging)
func (s SessionStatus) String() string {
	return string(s)
}
