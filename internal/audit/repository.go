package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

const (
	ActionTicketCreated     = "TICKET_CREATED"
	ActionTicketUpdated     = "TICKET_UPDATED"
	ActionTicketDeleted     = "TICKET_DELETED"
	ActionStatusChanged     = "STATUS_CHANGED"
	ActionTechnicianChanged = "TECHNICIAN_ASSIGNED"
)

// Insert records who did what inside tx. ticketID may be nil for
// branch-level actions.
func Insert(ctx context.Context, tx pgx.Tx, branchID string, ticketID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (branch_id, ticket_id, action, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, branchID, ticketID, action, actor, s)
	return err
}
