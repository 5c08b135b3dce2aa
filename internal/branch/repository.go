package branch

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

const columns = `id, name, address, phone, email, created_at, updated_at`

func scan(row pgx.Row) (*Branch, error) {
	b := &Branch{}
	if err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repository) List(ctx context.Context) ([]Branch, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM branches ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Branch{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Branch, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM branches WHERE id = $1`, id))
}

func (r *Repository) Create(ctx context.Context, in Input) (*Branch, error) {
	const q = `
INSERT INTO branches (name, address, phone, email)
VALUES ($1, $2, $3, $4)
RETURNING ` + columns
	return scan(r.db.QueryRow(ctx, q, in.Name, in.Address, in.Phone, in.Email))
}

func (r *Repository) Update(ctx context.Context, id string, in Input) (*Branch, error) {
	const q = `
UPDATE branches
SET name = $2, address = $3, phone = $4, email = $5, updated_at = NOW()
WHERE id = $1
RETURNING ` + columns
	return scan(r.db.QueryRow(ctx, q, id, in.Name, in.Address, in.Phone, in.Email))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
