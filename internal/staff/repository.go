package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"servicecenter/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const columns = `id, COALESCE(branch_id::text, ''), name, email, phone, role, active, password_hash, created_at, updated_at`

func scan(row pgx.Row) (*Staff, error) {
	s := &Staff{}
	if err := row.Scan(&s.ID, &s.BranchID, &s.Name, &s.Email, &s.Phone, &s.Role, &s.Active, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Staff, error) {
	const q = `
SELECT ` + columns + `
FROM staff
WHERE ($1 = '' OR role = $1)
  AND ($2 = '' OR branch_id::text = $2)
ORDER BY name ASC
`
	rows, err := r.db.Query(ctx, q, string(f.Role), f.BranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Staff{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Staff, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM staff WHERE id = $1`, id))
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*Staff, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM staff WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *Repository) Create(ctx context.Context, in Input, passwordHash string) (*Staff, error) {
	const q = `
INSERT INTO staff (branch_id, name, email, phone, role, active, password_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + columns
	s, err := scan(r.db.QueryRow(ctx, q, nullable(in.BranchID), in.Name, in.Email, in.Phone, in.Role, in.IsActive(), passwordHash))
	if db.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return s, err
}

// Update keeps the stored password hash when passwordHash is empty.
func (r *Repository) Update(ctx context.Context, id string, in Input, passwordHash string) (*Staff, error) {
	const q = `
UPDATE staff
SET branch_id = $2, name = $3, email = $4, phone = $5, role = $6, active = $7,
    password_hash = COALESCE(NULLIF($8, ''), password_hash),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + columns
	s, err := scan(r.db.QueryRow(ctx, q, id, nullable(in.BranchID), in.Name, in.Email, in.Phone, in.Role, in.IsActive(), passwordHash))
	if db.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return s, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
