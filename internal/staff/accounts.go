package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"servicecenter/internal/auth"
)

type Getter interface {
	Get(ctx context.Context, id string) (*Staff, error)
}

// Accounts resolves token subjects to live staff records for BearerAuth.
type Accounts struct {
	Staff Getter
}

func (a Accounts) ActivePrincipal(ctx context.Context, staffID string) (auth.Principal, error) {
	if _, err := uuid.Parse(staffID); err != nil {
		return auth.Principal{}, auth.ErrUnknownAccount
	}
	s, err := a.Staff.Get(ctx, staffID)
	if errors.Is(err, ErrNotFound) {
		return auth.Principal{}, auth.ErrUnknownAccount
	}
	if err != nil {
		return auth.Principal{}, err
	}
	if !s.Active {
		return auth.Principal{}, auth.ErrAccountDisabled
	}
	return s.Principal(), nil
}
