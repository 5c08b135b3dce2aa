package ticket

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"servicecenter/internal/workflow"
)

var (
	ErrNotFound = errors.New("ticket not found")
	// ErrCostRequired is returned when an edit would leave a Completed ticket
	// without a positive cost.
	ErrCostRequired = errors.New("completed tickets must keep a positive cost")
	// ErrNotTechnician is returned when the assignee is missing, inactive,
	// not a technician, or belongs to another branch.
	ErrNotTechnician = errors.New("assignee is not an active technician of this branch")
	ErrUnknownParty  = errors.New("branch or customer does not exist")
)

type Ticket struct {
	ID                 string              `json:"id"`
	TicketNumber       string              `json:"ticketNumber"`
	BranchID           string              `json:"branchId"`
	CustomerID         string              `json:"customerId"`
	TechnicianID       string              `json:"technicianId,omitempty"`
	Device             string              `json:"device"`
	Problem            string              `json:"problem"`
	Status             workflow.Status     `json:"status"`
	Cost               decimal.NullDecimal `json:"cost"`
	CancellationReason string              `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// Snapshot is the view of the ticket the workflow evaluates against.
func (t Ticket) Snapshot() workflow.Snapshot {
	return workflow.Snapshot{ID: t.ID, Status: t.Status, Cost: t.Cost}
}

type Filter struct {
	BranchID string
	Status   workflow.Status
}

type CreateInput struct {
	BranchID     string              `json:"branchId"`
	CustomerID   string              `json:"customerId"`
	TechnicianID string              `json:"technicianId,omitempty"`
	Device       string              `json:"device"`
	Problem      string              `json:"problem"`
	Cost         decimal.NullDecimal `json:"cost"`
}

type UpdateInput struct {
	Device  string              `json:"device"`
	Problem string              `json:"problem"`
	Cost    decimal.NullDecimal `json:"cost"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func (in CreateInput) Normalize() (CreateInput, error) {
	in.BranchID = strings.TrimSpace(in.BranchID)
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	in.TechnicianID = strings.TrimSpace(in.TechnicianID)
	in.Device = strings.TrimSpace(in.Device)
	in.Problem = strings.TrimSpace(in.Problem)
	if in.CustomerID == "" {
		return in, &ValidationError{Field: "customerId", Message: "is required"}
	}
	if in.Device == "" {
		return in, &ValidationError{Field: "device", Message: "is required"}
	}
	if err := checkCost(in.Cost); err != nil {
		return in, err
	}
	return in, nil
}

func (in UpdateInput) Normalize() (UpdateInput, error) {
	in.Device = strings.TrimSpace(in.Device)
	in.Problem = strings.TrimSpace(in.Problem)
	if in.Device == "" {
		return in, &ValidationError{Field: "device", Message: "is required"}
	}
	if err := checkCost(in.Cost); err != nil {
		return in, err
	}
	return in, nil
}

// maxCost is the first value NUMERIC(12, 2) cannot hold.
var maxCost = decimal.New(1, 10)

func checkCost(c decimal.NullDecimal) error {
	if !c.Valid {
		return nil
	}
	if c.Decimal.IsNegative() {
		return &ValidationError{Field: "cost", Message: "must not be negative"}
	}
	if c.Decimal.GreaterThanOrEqual(maxCost) {
		return &ValidationError{Field: "cost", Message: "must be less than 10000000000"}
	}
	if c.Decimal.Exponent() < -2 && !c.Decimal.Equal(c.Decimal.Round(2)) {
		return &ValidationError{Field: "cost", Message: "must have at most two decimal places"}
	}
	return nil
}

// costArg renders a nullable cost for a NUMERIC parameter.
func costArg(c decimal.NullDecimal) *string {
	if !c.Valid {
		return nil
	}
	s := c.Decimal.StringFixed(2)
	return &s
}

func parseCost(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
