package ticket

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"servicecenter/internal/api"
	"servicecenter/internal/auth"
	"servicecenter/internal/events"
	"servicecenter/internal/notify"
	"servicecenter/internal/submission"
	"servicecenter/internal/workflow"
)

var tracer = otel.Tracer("servicecenter/internal/ticket")

type Store interface {
	List(ctx context.Context, f Filter) ([]Ticket, error)
	Get(ctx context.Context, id string) (*Ticket, error)
	Create(ctx context.Context, in CreateInput, actor string) (*Ticket, error)
	Update(ctx context.Context, id string, in UpdateInput, actor string) (*Ticket, error)
	AssignTechnician(ctx context.Context, id, technicianID, actor string) (*Ticket, error)
	ApplyTransition(ctx context.Context, req workflow.TransitionRequest, actor string) (*Ticket, error)
	Delete(ctx context.Context, id, actor string) error
	Events(ctx context.Context, id string) ([]events.Event, error)
}

type Handlers struct {
	Tickets   Store
	Workflow  *workflow.Workflow
	Guard     submission.Guard
	Publisher notify.Publisher
}

type StatusRequest struct {
	Status               string `json:"status"`
	CancellationReason   string `json:"cancellationReason,omitempty"`
	AcknowledgeCostReset bool   `json:"acknowledgeCostReset,omitempty"`
}

type TechnicianRequest struct {
	TechnicianID string `json:"technicianId"`
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var f Filter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		st, err := workflow.ParseStatus(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
			return
		}
		f.Status = st
	}
	if raw := q.Get("branchId"); raw != "" {
		if !api.ValidUUID(raw) {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid branchId")
			return
		}
		f.BranchID = raw
	}
	if !p.Is(auth.RoleAdmin) {
		if p.BranchID == "" {
			api.WriteJSON(w, http.StatusOK, map[string]any{"items": []Ticket{}})
			return
		}
		f.BranchID = p.BranchID
	}

	items, err := h.Tickets.List(r.Context(), f)
	if err != nil {
		writeStoreError(w, "list", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	t, ok := h.load(w, r, p)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, t)
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var in CreateInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	in, err := in.Normalize()
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if !p.Is(auth.RoleAdmin) {
		if in.BranchID == "" {
			in.BranchID = p.BranchID
		}
		if in.BranchID != p.BranchID {
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "tickets can only be opened for your own branch")
			return
		}
	}
	for field, v := range map[string]string{"branchId": in.BranchID, "customerId": in.CustomerID} {
		if !api.ValidUUID(v) {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid "+field)
			return
		}
	}
	if in.TechnicianID != "" && !api.ValidUUID(in.TechnicianID) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid technicianId")
		return
	}

	t, err := h.Tickets.Create(r.Context(), in, p.StaffID)
	if err != nil {
		writeStoreError(w, "create", err)
		return
	}
	log.Printf("ticket created ticket_id=%s number=%s branch_id=%s actor=%s", t.ID, t.TicketNumber, t.BranchID, p.StaffID)
	api.WriteJSON(w, http.StatusCreated, t)
}

// Update edits the descriptive fields and the cost. It shares the per-ticket
// guard with status submissions so a cost edit cannot interleave with one.
func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in UpdateInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	in, err := in.Normalize()
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	cur, ok := h.load(w, r, p)
	if !ok {
		return
	}
	release, ok := h.acquire(r.Context(), w, cur.ID)
	if !ok {
		return
	}
	defer release()

	t, err := h.Tickets.Update(r.Context(), cur.ID, in, p.StaffID)
	if err != nil {
		writeStoreError(w, "update", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, t)
}

func (h Handlers) AssignTechnician(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var body TechnicianRequest
	if err := api.DecodeJSON(r, &body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if body.TechnicianID != "" && !api.ValidUUID(body.TechnicianID) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid technicianId")
		return
	}

	cur, ok := h.load(w, r, p)
	if !ok {
		return
	}
	t, err := h.Tickets.AssignTechnician(r.Context(), cur.ID, body.TechnicianID, p.StaffID)
	if err != nil {
		writeStoreError(w, "assign technician", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, t)
}

// PatchStatus runs one status submission: guard, snapshot, workflow, write,
// then a best-effort status event.
func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return
	}
	var body StatusRequest
	if err := api.DecodeJSON(r, &body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	to, err := workflow.ParseStatus(body.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}

	ctx, span := tracer.Start(r.Context(), "ticket.submit_status", trace.WithAttributes(
		attribute.String("ticket.id", id),
		attribute.String("ticket.status.to", string(to)),
		attribute.Bool("ticket.cost_reset.acknowledged", body.AcknowledgeCostReset),
	))
	defer span.End()

	if _, ok := h.load(w, r, p); !ok {
		return
	}
	release, ok := h.acquire(ctx, w, id)
	if !ok {
		span.SetStatus(codes.Error, "submission in flight")
		return
	}
	defer release()

	// Re-read under the guard; the previous holder may have just committed.
	cur, err := h.Tickets.Get(ctx, id)
	if err != nil {
		writeStoreError(w, "load", err)
		return
	}
	span.SetAttributes(attribute.String("ticket.status.from", string(cur.Status)))

	updated, req, err := workflow.Apply(ctx, h.Workflow, workflow.Proposal{
		Ticket:       cur.Snapshot(),
		To:           to,
		Extra:        workflow.Extra{CancellationReason: body.CancellationReason},
		Acknowledged: body.AcknowledgeCostReset,
	}, func(ctx context.Context, req workflow.TransitionRequest) (*Ticket, error) {
		return h.Tickets.ApplyTransition(ctx, req, p.StaffID)
	})
	if err != nil {
		var rej workflow.Rejection
		if errors.As(err, &rej) {
			span.SetAttributes(attribute.String("ticket.rejection", string(rej.ReasonCode())))
			writeRejection(w, rej)
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		writeStoreError(w, "submit status", err)
		return
	}

	log.Printf("ticket status changed ticket_id=%s from=%q to=%q cost_reset=%t actor=%s",
		updated.ID, req.From, req.To, req.ResetsCost(), p.StaffID)

	ev := notify.StatusChanged{
		TicketID:           updated.ID,
		TicketNumber:       updated.TicketNumber,
		BranchID:           updated.BranchID,
		CustomerID:         updated.CustomerID,
		From:               string(req.From),
		To:                 string(req.To),
		CancellationReason: req.CancellationReason,
		CostReset:          req.ResetsCost(),
		Actor:              p.StaffID,
		OccurredAt:         time.Now().UTC(),
	}
	if err := h.Publisher.PublishStatusChanged(ctx, ev); err != nil {
		log.Printf("ticket status event publish failed ticket_id=%s err=%v", updated.ID, err)
	}

	api.WriteJSON(w, http.StatusOK, updated)
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	t, ok := h.load(w, r, p)
	if !ok {
		return
	}
	items, err := h.Tickets.Events(r.Context(), t.ID)
	if err != nil {
		writeStoreError(w, "events", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	t, ok := h.load(w, r, p)
	if !ok {
		return
	}
	if err := h.Tickets.Delete(r.Context(), t.ID, p.StaffID); err != nil {
		writeStoreError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Statuses lists the status vocabulary and the cancellation reason minimum
// so clients validate the same way the server does.
func (h Handlers) Statuses(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"items":                       workflow.Describe(),
		"minCancellationReasonLength": h.Workflow.Policy().MinCancellationReasonLength,
	})
}

func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := api.PrincipalFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return auth.Principal{}, false
	}
	return p, true
}

func canSee(p auth.Principal, t *Ticket) bool {
	return p.Is(auth.RoleAdmin) || (p.BranchID != "" && t.BranchID == p.BranchID)
}

// load fetches the {id} ticket. Tickets of other branches look missing.
func (h Handlers) load(w http.ResponseWriter, r *http.Request, p auth.Principal) (*Ticket, bool) {
	id, ok := api.IDParam(w, r, "id")
	if !ok {
		return nil, false
	}
	t, err := h.Tickets.Get(r.Context(), id)
	if err == nil && !canSee(p, t) {
		err = ErrNotFound
	}
	if err != nil {
		writeStoreError(w, "get", err)
		return nil, false
	}
	return t, true
}

func (h Handlers) acquire(ctx context.Context, w http.ResponseWriter, id string) (func(), bool) {
	release, err := h.Guard.Acquire(ctx, id)
	if err != nil {
		if errors.Is(err, submission.ErrInFlight) {
			api.WriteError(w, http.StatusConflict, "submission_in_flight", "a change for this ticket is already being saved")
			return nil, false
		}
		log.Printf("ticket guard acquire failed ticket_id=%s err=%v", id, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return nil, false
	}
	return release, true
}
