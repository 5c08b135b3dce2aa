package workflow

import "fmt"

type Reason string

const (
	ReasonCostRequired   Reason = "cost_required"
	ReasonReasonRequired Reason = "reason_required"
	ReasonCostWillReset  Reason = "cost_will_reset"
)

// Message returns the user-facing text for a reason code.
func (r Reason) Message() string {
	switch r {
	case ReasonCostRequired:
		return "set a cost greater than zero before completing the service"
	case ReasonReasonRequired:
		return "a cancellation reason is required"
	case ReasonCostWillReset:
		return "moving a completed service to another status resets its cost"
	default:
		return string(r)
	}
}

// Rejection is returned by Propose when a transition is not authorized.
type Rejection interface {
	error
	ReasonCode() Reason
}

// PreconditionError means the ticket or the proposal is missing something.
// The caller fixes the input and proposes again.
type PreconditionError struct {
	Reason  Reason
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *PreconditionError) ReasonCode() Reason { return e.Reason }

// ConfirmationRequired is an interactive checkpoint, not a failure. The caller
// proposes the same transition again with Acknowledged set.
type ConfirmationRequired struct {
	Reason  Reason
	Message string
}

func (e *ConfirmationRequired) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *ConfirmationRequired) ReasonCode() Reason { return e.Reason }

func precondition(r Reason) *PreconditionError {
	return &PreconditionError{Reason: r, Message: r.Message()}
}

func confirmation(r Reason) *ConfirmationRequired {
	return &ConfirmationRequired{Reason: r, Message: r.Message()}
}
