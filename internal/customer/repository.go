package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"servicecenter/pkg/db"
)

var ErrHasTickets = errors.New("customer has tickets")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const columns = `id, name, phone, email, address, created_at, updated_at`

func scan(row pgx.Row) (*Customer, error) {
	c := &Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns customers ordered by name. A non-empty query matches name or
// phone as a case-insensitive substring; % and _ in the query match literally.
func (r *Repository) List(ctx context.Context, query string, limit int) ([]Customer, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT ` + columns + `
FROM customers
WHERE $1 = '' OR name ILIKE $2 ESCAPE '\' OR phone LIKE $2 ESCAPE '\'
ORDER BY name ASC
LIMIT $3
`
	query = strings.TrimSpace(query)
	rows, err := r.db.Query(ctx, q, query, containsPattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Customer, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM customers WHERE id = $1`, id))
}

func (r *Repository) Create(ctx context.Context, in Input) (*Customer, error) {
	const q = `
INSERT INTO customers (name, phone, email, address)
VALUES ($1, $2, $3, $4)
RETURNING ` + columns
	return scan(r.db.QueryRow(ctx, q, in.Name, in.Phone, in.Email, in.Address))
}

func (r *Repository) Update(ctx context.Context, id string, in Input) (*Customer, error) {
	const q = `
UPDATE customers
SET name = $2, phone = $3, email = $4, address = $5, updated_at = NOW()
WHERE id = $1
RETURNING ` + columns
	return scan(r.db.QueryRow(ctx, q, id, in.Name, in.Phone, in.Email, in.Address))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrHasTickets
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
