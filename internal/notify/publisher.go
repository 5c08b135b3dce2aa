// Package notify publishes ticket status changes for downstream consumers
// such as SMS or e-mail notifiers. Publishing is best effort: a failure is
// logged by the caller and never undoes a committed status change.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type StatusChanged struct {
	TicketID           string    `json:"ticketId"`
	TicketNumber       string    `json:"ticketNumber"`
	BranchID           string    `json:"branchId"`
	CustomerID         string    `json:"customerId"`
	From               string    `json:"fromStatus"`
	To                 string    `json:"toStatus"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
	CostReset          bool      `json:"costReset"`
	Actor              string    `json:"actor"`
	OccurredAt         time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusChanged) error
	Close() error
}

type Noop struct{}

func (Noop) PublishStatusChanged(context.Context, StatusChanged) error { return nil }
func (Noop) Close() error                                              { return nil }

// AMQPPublisher keeps one connection and opens a channel per publish.
// A dropped connection is redialed on the next publish.
type AMQPPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, queue: queue}
	if _, err := p.connection(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func (p *AMQPPublisher) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		MessageId:    ev.TicketID + ":" + ev.OccurredAt.Format(time.RFC3339Nano),
		Type:         "ticket.status_changed",
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// New returns a Noop publisher when url is empty or the broker is unreachable.
func New(url, queue string) Publisher {
	if url == "" {
		return Noop{}
	}
	p, err := NewAMQPPublisher(url, queue)
	if err != nil {
		log.Printf("amqp: dial failed, status events disabled err=%v", err)
		return Noop{}
	}
	return p
}
