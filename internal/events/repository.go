package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	TypeCreated           = "TICKET_CREATED"
	TypeStatusChanged     = "STATUS_CHANGED"
	TypeTechnicianChanged = "TECHNICIAN_ASSIGNED"
)

// Insert appends a timeline entry inside tx. data is stored as JSONB.
func Insert(ctx context.Context, tx pgx.Tx, ticketID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO ticket_events (ticket_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := tx.Exec(ctx, q, ticketID, eventType, summary, actor, occurredAt, s)
	return err
}
