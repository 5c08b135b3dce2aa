package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleTechnician   Role = "technician"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleReceptionist, RoleTechnician:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

// Principal is the authenticated staff member behind a request.
type Principal struct {
	StaffID  string `json:"staffId"`
	Role     Role   `json:"role"`
	BranchID string `json:"branchId,omitempty"`
}

func (p Principal) Is(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type Claims struct {
	jwt.RegisteredClaims

	Role     Role   `json:"role"`
	BranchID string `json:"branchId,omitempty"`
}

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnknownAccount and ErrAccountDisabled are returned by account
	// lookups when a still-valid token belongs to a deleted or disabled user.
	ErrUnknownAccount  = errors.New("account no longer exists")
	ErrAccountDisabled = errors.New("account is disabled")
)

// Issuer signs and verifies HS256 staff access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(p Principal) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("missing signing secret")
	}
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.StaffID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role:     p.Role,
		BranchID: p.BranchID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) Verify(tokenString string) (Principal, error) {
	if tokenString == "" || len(i.secret) == 0 {
		return Principal{}, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}
	role, err := ParseRole(string(claims.Role))
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	return Principal{StaffID: claims.Subject, Role: role, BranchID: claims.BranchID}, nil
}
