// Package workflow decides whether a service ticket may change status and what
// the caller must supply or confirm first. It does no I/O; the status write
// itself belongs to whoever submits the returned TransitionRequest.
package workflow

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DefaultMinCancellationReasonLength = 1
	StrictMinCancellationReasonLength  = 10
)

// Snapshot is the part of a ticket the workflow reads.
type Snapshot struct {
	ID     string
	Status Status
	Cost   decimal.NullDecimal
}

type Extra struct {
	CancellationReason string
}

type Proposal struct {
	Ticket       Snapshot
	To           Status
	Extra        Extra
	Acknowledged bool
}

// TransitionRequest is an authorized status change, ready for submission.
type TransitionRequest struct {
	TicketID           string `json:"ticketId"`
	From               Status `json:"fromStatus"`
	To                 Status `json:"toStatus"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}

// ResetsCost reports whether the backend clears the ticket cost when it
// applies r.
func (r TransitionRequest) ResetsCost() bool {
	return r.From == StatusCompleted && r.To != StatusCompleted
}

type Policy struct {
	// MinCancellationReasonLength is counted in runes after trimming.
	// Values below 1 are raised to 1.
	MinCancellationReasonLength int
}

func DefaultPolicy() Policy {
	return Policy{MinCancellationReasonLength: DefaultMinCancellationReasonLength}
}

type Workflow struct {
	policy Policy
}

func New(p Policy) *Workflow {
	if p.MinCancellationReasonLength < 1 {
		p.MinCancellationReasonLength = DefaultMinCancellationReasonLength
	}
	return &Workflow{policy: p}
}

func (w *Workflow) Policy() Policy { return w.policy }

// Propose evaluates p. It returns an authorized request, or an error that is
// a *PreconditionError or a *ConfirmationRequired.
//
// Rules, in order:
//   - Completed needs a cost > 0. Nothing else is checked when this fails.
//   - Leaving Completed needs an acknowledgment, because the backend resets cost.
//   - Cancelled needs a reason of at least the policy length.
//   - Anything else is allowed. Order in the status list is not enforced.
func (w *Workflow) Propose(p Proposal) (TransitionRequest, error) {
	if _, err := ParseStatus(string(p.To)); err != nil {
		return TransitionRequest{}, err
	}

	if p.To == StatusCompleted {
		if !p.Ticket.Cost.Valid || p.Ticket.Cost.Decimal.LessThanOrEqual(decimal.Zero) {
			return TransitionRequest{}, precondition(ReasonCostRequired)
		}
	} else if p.Ticket.Status == StatusCompleted && !p.Acknowledged {
		return TransitionRequest{}, confirmation(ReasonCostWillReset)
	}

	req := TransitionRequest{
		TicketID: p.Ticket.ID,
		From:     p.Ticket.Status,
		To:       p.To,
	}

	if p.To == StatusCancelled {
		reason := p.Extra.CancellationReason
		if utf8.RuneCountInString(strings.TrimSpace(reason)) < w.policy.MinCancellationReasonLength {
			return TransitionRequest{}, precondition(ReasonReasonRequired)
		}
		req.CancellationReason = reason
	}

	return req, nil
}
