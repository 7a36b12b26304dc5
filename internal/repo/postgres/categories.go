package postgres

import (
	"context"

	"github.com/geocoder89/bookrental/internal/domain/category"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	base
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{base{pool: pool, prom: prom}}
}

func (r *CategoriesRepo) Create(ctx context.Context, name string) (c category.Category, err error) {
	err = r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`,
			name,
		).Scan(&c.ID, &c.Name, &c.CreatedAt)
	})

	if IsUniqueViolation(err) {
		err = category.ErrAlreadyExists
	}
	return
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	var rows pgx.Rows

	err := r.observe("categories.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]category.Category, 0)
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}
