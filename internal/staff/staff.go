package staff

import (
	"errors"
	"strings"
	"time"

	"servicecenter/internal/auth"
)

var (
	ErrNotFound   = errors.New("staff not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Staff is a dashboard user. PasswordHash never leaves the process.
type Staff struct {
	ID           string    `json:"id"`
	BranchID     string    `json:"branchId,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         auth.Role `json:"role"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s Staff) Principal() auth.Principal {
	return auth.Principal{StaffID: s.ID, Role: s.Role, BranchID: s.BranchID}
}

type Filter struct {
	Role     auth.Role
	BranchID string
}

type Input struct {
	BranchID string `json:"branchId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Active   *bool  `json:"active,omitempty"`
	// Password is required on create and optional on update.
	Password string `json:"password,omitempty"`
}

type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func (in Input) Normalize(creating bool) (Input, error) {
	in.BranchID = strings.TrimSpace(in.BranchID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	if in.Name == "" {
		return Input{}, ValidationError("name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return Input{}, ValidationError("a valid email is required")
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return Input{}, ValidationError("role must be admin, manager, receptionist or technician")
	}
	if role != auth.RoleAdmin && in.BranchID == "" {
		return Input{}, ValidationError("branchId is required for non-admin staff")
	}
	if creating && in.Password == "" {
		return Input{}, ValidationError("password is required")
	}
	if in.Password != "" && len(in.Password) < auth.MinPasswordLength {
		return Input{}, ValidationError("password must be at least 8 characters")
	}
	return in, nil
}

func (in Input) IsActive() bool {
	return in.Active == nil || *in.Active
}
