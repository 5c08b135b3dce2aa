package workflow

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cost(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var rej Rejection
	require.True(t, errors.As(err, &rej), "expected a rejection, got %v", err)
	return rej.ReasonCode()
}

func TestPropose_CompletedRequiresPositiveCost(t *testing.T) {
	w := New(DefaultPolicy())

	for _, c := range []decimal.NullDecimal{{}, cost("0"), cost("-5"), cost("0.00")} {
		_, err := w.Propose(Proposal{
			Ticket: Snapshot{ID: "t1", Status: StatusInService, Cost: c},
			To:     StatusCompleted,
		})
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, ReasonCostRequired, pe.Reason)
		assert.NotEmpty(t, pe.Message)
	}
}

func TestPropose_CostCheckRunsBeforeEverythingElse(t *testing.T) {
	w := New(DefaultPolicy())

	// A completed ticket without cost proposing Completed again never reaches
	// the confirmation rule.
	_, err := w.Propose(Proposal{
		Ticket: Snapshot{ID: "t1", Status: StatusCompleted},
		To:     StatusCompleted,
	})
	assert.Equal(t, ReasonCostRequired, reasonOf(t, err))
}

func TestPropose_ScenarioB_CompleteWithCost(t *testing.T) {
	w := New(DefaultPolicy())

	req, err := w.Propose(Proposal{
		Ticket: Snapshot{ID: "t1", Status: StatusInService, Cost: cost("500")},
		To:     StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, TransitionRequest{TicketID: "t1", From: StatusInService, To: StatusCompleted}, req)
	assert.False(t, req.ResetsCost())
}

func TestPropose_ScenarioC_LeavingCompletedNeedsAcknowledgment(t *testing.T) {
	w := New(DefaultPolicy())
	p := Proposal{
		Ticket: Snapshot{ID: "t1", Status: StatusCompleted, Cost: cost("500")},
		To:     StatusDelivered,
	}

	_, err := w.Propose(p)
	var cr *ConfirmationRequired
	require.ErrorAs(t, err, &cr)
	assert.Equal(t, ReasonCostWillReset, cr.Reason)

	p.Acknowledged = true
	req, err := w.Propose(p)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, req.From)
	assert.Equal(t, StatusDelivered, req.To)
	assert.True(t, req.ResetsCost())
}

func TestPropose_LeavingCompletedForEveryStatus(t *testing.T) {
	w := New(DefaultPolicy())

	for _, to := range Ordered {
		if to == StatusCompleted {
			continue
		}
		_, err := w.Propose(Proposal{
			Ticket: Snapshot{ID: "t1", Status: StatusCompleted, Cost: cost("10")},
			To:     to,
			Extra:  Extra{CancellationReason: "customer asked"},
		})
		assert.Equal(t, ReasonCostWillReset, reasonOf(t, err), "to=%s", to)
	}
}

func TestPropose_AcknowledgedCancellationStillNeedsReason(t *testing.T) {
	w := New(DefaultPolicy())

	_, err := w.Propose(Proposal{
		Ticket:       Snapshot{ID: "t1", Status: StatusCompleted, Cost: cost("10")},
		To:           StatusCancelled,
		Acknowledged: true,
	})
	assert.Equal(t, ReasonReasonRequired, reasonOf(t, err))
}

func TestPropose_CancellationReason(t *testing.T) {
	tests := []struct {
		name    string
		minLen  int
		reason  string
		allowed bool
	}{
		{name: "scenario D empty", minLen: 1, reason: "", allowed: false},
		{name: "whitespace only", minLen: 1, reason: "  \t\n ", allowed: false},
		{name: "scenario E", minLen: 1, reason: "Customer changed mind", allowed: true},
		{name: "single char", minLen: 1, reason: "x", allowed: true},
		{name: "strict too short", minLen: 10, reason: "too short", allowed: false},
		{name: "strict padded short", minLen: 10, reason: "   abc      ", allowed: false},
		{name: "strict exact", minLen: 10, reason: "0123456789", allowed: true},
		{name: "strict counts runes", minLen: 10, reason: "ßßßßßßßßßß", allowed: true},
		{name: "zero policy falls back to one", minLen: 0, reason: " ", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(Policy{MinCancellationReasonLength: tt.minLen})
			req, err := w.Propose(Proposal{
				Ticket: Snapshot{ID: "t9", Status: StatusReceived},
				To:     StatusCancelled,
				Extra:  Extra{CancellationReason: tt.reason},
			})
			if !tt.allowed {
				assert.Equal(t, ReasonReasonRequired, reasonOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.reason, req.CancellationReason)
			assert.Equal(t, StatusReceived, req.From)
			assert.Equal(t, StatusCancelled, req.To)
		})
	}
}

func TestPropose_AnyToAnyOutsideSpecialCases(t *testing.T) {
	w := New(DefaultPolicy())

	for _, from := range Ordered {
		if from == StatusCompleted {
			continue
		}
		for _, to := range Ordered {
			if to == StatusCompleted || to == StatusCancelled {
				continue
			}
			req, err := w.Propose(Proposal{Ticket: Snapshot{ID: "t", Status: from}, To: to})
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Empty(t, req.CancellationReason)
		}
	}
}

func TestPropose_ReasonOnlyAttachedToCancellation(t *testing.T) {
	w := New(DefaultPolicy())

	req, err := w.Propose(Proposal{
		Ticket: Snapshot{ID: "t", Status: StatusReceived},
		To:     StatusUnderInspection,
		Extra:  Extra{CancellationReason: "ignored"},
	})
	require.NoError(t, err)
	assert.Empty(t, req.CancellationReason)
}

func TestPropose_UnknownTargetStatus(t *testing.T) {
	w := New(DefaultPolicy())

	_, err := w.Propose(Proposal{Ticket: Snapshot{ID: "t", Status: StatusReceived}, To: "Shipped"})
	require.Error(t, err)
	var rej Rejection
	assert.False(t, errors.As(err, &rej))
}

func TestPropose_Idempotent(t *testing.T) {
	w := New(Policy{MinCancellationReasonLength: 10})
	proposals := []Proposal{
		{Ticket: Snapshot{ID: "a", Status: StatusInService}, To: StatusCompleted},
		{Ticket: Snapshot{ID: "b", Status: StatusCompleted, Cost: cost("1")}, To: StatusFinished},
		{Ticket: Snapshot{ID: "c", Status: StatusReceived}, To: StatusCancelled, Extra: Extra{CancellationReason: "parts unavailable"}},
		{Ticket: Snapshot{ID: "d", Status: StatusApproved}, To: StatusInService},
	}

	for _, p := range proposals {
		r1, e1 := w.Propose(p)
		r2, e2 := w.Propose(p)
		assert.Equal(t, r1, r2)
		assert.Equal(t, e1, e2)
	}
}
