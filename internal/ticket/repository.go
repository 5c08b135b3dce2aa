package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"servicecenter/internal/audit"
	"servicecenter/internal/auth"
	"servicecenter/internal/events"
	"servicecenter/internal/workflow"
	"servicecenter/pkg/db"
)

type Repository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db, now: time.Now}
}

const columns = `id, ticket_number, branch_id, customer_id, COALESCE(technician_id::text, ''),
       device, problem, status, cost::text, COALESCE(cancellation_reason, ''),
       created_at, updated_at`

func scan(row pgx.Row) (*Ticket, error) {
	var (
		t    Ticket
		cost *string
	)
	if err := row.Scan(
		&t.ID, &t.TicketNumber, &t.BranchID, &t.CustomerID, &t.TechnicianID,
		&t.Device, &t.Problem, &t.Status, &cost, &t.CancellationReason,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c, err := parseCost(cost)
	if err != nil {
		return nil, fmt.Errorf("ticket %s cost: %w", t.ID, err)
	}
	t.Cost = c
	return &t, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Ticket, error) {
	const q = `
SELECT ` + columns + `
FROM tickets
WHERE ($1 = '' OR branch_id::text = $1)
  AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q, f.BranchID, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ticket{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Ticket, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM tickets WHERE id = $1`, id))
}

func getForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Ticket, error) {
	return scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM tickets WHERE id = $1 FOR UPDATE`, id))
}

func checkTechnician(ctx context.Context, tx pgx.Tx, branchID, staffID string) error {
	var (
		role    string
		active  bool
		staffBr string
	)
	const q = `SELECT role, active, COALESCE(branch_id::text, '') FROM staff WHERE id = $1`
	if err := tx.QueryRow(ctx, q, staffID).Scan(&role, &active, &staffBr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotTechnician
		}
		return err
	}
	if auth.Role(role) != auth.RoleTechnician || !active || staffBr != branchID {
		return ErrNotTechnician
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) Create(ctx context.Context, in CreateInput, actor string) (*Ticket, error) {
	var out *Ticket
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if in.TechnicianID != "" {
			if err := checkTechnician(ctx, tx, in.BranchID, in.TechnicianID); err != nil {
				return err
			}
		}
		const q = `
INSERT INTO tickets (branch_id, customer_id, technician_id, device, problem, status, cost)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS numeric))
RETURNING ` + columns
		t, err := scan(tx.QueryRow(ctx, q,
			in.BranchID, in.CustomerID, nullable(in.TechnicianID), in.Device, in.Problem,
			string(workflow.StatusReceived), costArg(in.Cost),
		))
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrUnknownParty
			}
			return err
		}

		if err := events.Insert(ctx, tx, t.ID, events.TypeCreated,
			"Ticket "+t.TicketNumber+" received", actor, r.now().UTC(),
			map[string]any{"device": t.Device},
		); err != nil {
			return err
		}
		if err := audit.Insert(ctx, tx, t.BranchID, &t.ID, audit.ActionTicketCreated, actor, map[string]any{
			"ticketNumber": t.TicketNumber,
		}); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (r *Repository) Update(ctx context.Context, id string, in UpdateInput, actor string) (*Ticket, error) {
	var out *Ticket
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur.Status == workflow.StatusCompleted && (!in.Cost.Valid || !in.Cost.Decimal.IsPositive()) {
			return ErrCostRequired
		}

		const q = `
UPDATE tickets
SET device = $2, problem = $3, cost = CAST($4 AS numeric), updated_at = NOW()
WHERE id = $1
RETURNING ` + columns
		t, err := scan(tx.QueryRow(ctx, q, id, in.Device, in.Problem, costArg(in.Cost)))
		if err != nil {
			return err
		}
		if err := audit.Insert(ctx, tx, t.BranchID, &t.ID, audit.ActionTicketUpdated, actor, map[string]any{
			"costBefore": costArg(cur.Cost),
			"costAfter":  costArg(t.Cost),
		}); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (r *Repository) AssignTechnician(ctx context.Context, id, technicianID, actor string) (*Ticket, error) {
	var out *Ticket
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if technicianID != "" {
			if err := checkTechnician(ctx, tx, cur.BranchID, technicianID); err != nil {
				return err
			}
		}

		const q = `
UPDATE tickets
SET technician_id = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + columns
		t, err := scan(tx.QueryRow(ctx, q, id, nullable(technicianID)))
		if err != nil {
			return err
		}

		summary := "Technician unassigned"
		if technicianID != "" {
			summary = "Technician assigned"
		}
		data := map[string]any{"from": cur.TechnicianID, "to": technicianID}
		if err := events.Insert(ctx, tx, t.ID, events.TypeTechnicianChanged, summary, actor, r.now().UTC(), data); err != nil {
			return err
		}
		if err := audit.Insert(ctx, tx, t.BranchID, &t.ID, audit.ActionTechnicianChanged, actor, data); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// ApplyTransition writes an authorized status change. Leaving Completed
// clears the cost. The cancellation reason is kept only while the ticket
// is Cancelled.
func (r *Repository) ApplyTransition(ctx context.Context, req workflow.TransitionRequest, actor string) (*Ticket, error) {
	var out *Ticket
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := getForUpdate(ctx, tx, req.TicketID)
		if err != nil {
			return err
		}

		var reason *string
		if req.To == workflow.StatusCancelled {
			reason = &req.CancellationReason
		}
		const q = `
UPDATE tickets
SET status = $2,
    cost = CASE WHEN $3 THEN NULL ELSE cost END,
    cancellation_reason = $4,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + columns
		t, err := scan(tx.QueryRow(ctx, q, req.TicketID, string(req.To), req.ResetsCost(), reason))
		if err != nil {
			return err
		}

		data := map[string]any{
			"from":      string(cur.Status),
			"to":        string(t.Status),
			"costReset": req.ResetsCost(),
		}
		if reason != nil {
			data["cancellationReason"] = *reason
		}
		summary := fmt.Sprintf("Status changed from %s to %s", cur.Status, t.Status)
		if err := events.Insert(ctx, tx, t.ID, events.TypeStatusChanged, summary, actor, r.now().UTC(), data); err != nil {
			return err
		}
		if err := audit.Insert(ctx, tx, t.BranchID, &t.ID, audit.ActionStatusChanged, actor, data); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (r *Repository) Delete(ctx context.Context, id, actor string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id); err != nil {
			return err
		}
		// Audit rows outlive the ticket; ticket_id is kept for lookups.
		return audit.Insert(ctx, tx, cur.BranchID, &cur.ID, audit.ActionTicketDeleted, actor, map[string]any{
			"ticketNumber": cur.TicketNumber,
			"status":       string(cur.Status),
		})
	})
}

func (r *Repository) Events(ctx context.Context, id string) ([]events.Event, error) {
	return events.ListByTicket(ctx, r.db, id)
}
