package customer

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func (in Input) Normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = normalizePhone(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)

	if in.Name == "" {
		return Input{}, ValidationError("name is required")
	}
	if in.Phone == "" {
		return Input{}, ValidationError("phone is required")
	}
	if len(strings.TrimPrefix(in.Phone, "+")) < 6 {
		return Input{}, ValidationError("phone is too short")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return Input{}, ValidationError("email is invalid")
	}
	return in, nil
}

// containsPattern builds a LIKE pattern matching q as a literal substring.
// The backslash is the escape character in the query.
func containsPattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// normalizePhone keeps digits and a leading plus sign.
func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
