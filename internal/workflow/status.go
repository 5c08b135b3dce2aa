package workflow

import "fmt"

type Status string

const (
	StatusReceived                   Status = "Received"
	StatusAssignedToTechnician       Status = "Assigned to Technician"
	StatusUnderInspection            Status = "Under Inspection"
	StatusWaitingForCustomerApproval Status = "Waiting for Customer Approval"
	StatusApproved                   Status = "Approved"
	StatusInService                  Status = "In Service"
	StatusFinished                   Status = "Finished"
	StatusDelivered                  Status = "Delivered"
	StatusCompleted                  Status = "Completed"
	StatusCancelled                  Status = "Cancelled"
)

// Ordered lists every status in workflow order. Cancelled is last and sits
// outside the main sequence.
var Ordered = []Status{
	StatusReceived,
	StatusAssignedToTechnician,
	StatusUnderInspection,
	StatusWaitingForCustomerApproval,
	StatusApproved,
	StatusInService,
	StatusFinished,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Ordered {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status: %s", s)
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Position returns the zero-based index of s in Ordered, or -1.
func (s Status) Position() int {
	for i, st := range Ordered {
		if st == s {
			return i
		}
	}
	return -1
}

type StatusInfo struct {
	Status   Status `json:"status"`
	Position int    `json:"position"`
	Terminal bool   `json:"terminal"`
}

func Describe() []StatusInfo {
	out := make([]StatusInfo, 0, len(Ordered))
	for i, st := range Ordered {
		out = append(out, StatusInfo{Status: st, Position: i, Terminal: st.Terminal()})
	}
	return out
}
