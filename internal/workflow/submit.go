package workflow

import "context"

// SubmitFunc writes an authorized transition to the system of record and
// returns the updated ticket as that system sees it.
type SubmitFunc[T any] func(ctx context.Context, req TransitionRequest) (T, error)

// Apply proposes p and, only when authorized, submits the request once.
// Rejections come back from Propose untouched; submission errors are returned
// exactly as submit produced them. Nothing is retried.
func Apply[T any](ctx context.Context, w *Workflow, p Proposal, submit SubmitFunc[T]) (T, TransitionRequest, error) {
	var zero T
	req, err := w.Propose(p)
	if err != nil {
		return zero, TransitionRequest{}, err
	}
	out, err := submit(ctx, req)
	if err != nil {
		return zero, req, err
	}
	return out, req, nil
}
