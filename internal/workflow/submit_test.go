package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type updated struct {
	Status Status
}

func TestApply_SubmitsAuthorizedRequestOnce(t *testing.T) {
	w := New(DefaultPolicy())
	calls := 0

	out, req, err := Apply(context.Background(), w, Proposal{
		Ticket: Snapshot{ID: "t1", Status: StatusInService, Cost: cost("500")},
		To:     StatusCompleted,
	}, func(ctx context.Context, r TransitionRequest) (updated, error) {
		calls++
		return updated{Status: r.To}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusCompleted, out.Status)
	assert.Equal(t, "t1", req.TicketID)
}

func TestApply_RejectionSkipsSubmit(t *testing.T) {
	w := New(DefaultPolicy())

	_, _, err := Apply(context.Background(), w, Proposal{
		Ticket: Snapshot{ID: "t1", Status: StatusInService},
		To:     StatusCompleted,
	}, func(ctx context.Context, r TransitionRequest) (updated, error) {
		require.Fail(t, "submit must not run for a rejected proposal")
		return updated{}, nil
	})

	assert.Equal(t, ReasonCostRequired, reasonOf(t, err))
}

func TestApply_SubmissionErrorPassedThroughVerbatim(t *testing.T) {
	w := New(DefaultPolicy())
	backendErr := errors.New("backend said no")
	calls := 0

	_, req, err := Apply(context.Background(), w, Proposal{
		Ticket: Snapshot{ID: "t1", Status: StatusReceived},
		To:     StatusUnderInspection,
	}, func(ctx context.Context, r TransitionRequest) (updated, error) {
		calls++
		return updated{}, backendErr
	})

	assert.Same(t, backendErr, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusUnderInspection, req.To)
}
