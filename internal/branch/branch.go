package branch

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("branch not found")
	ErrInUse    = errors.New("branch still has tickets")
)

type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func (in Input) Normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return Input{}, ValidationError("name is required")
	}
	if len(in.Name) > 200 {
		return Input{}, ValidationError("name must be at most 200 characters")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return Input{}, ValidationError("email is invalid")
	}
	return in, nil
}
