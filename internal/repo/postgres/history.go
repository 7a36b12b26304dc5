package postgres

import (
	"context"

	"github.com/geocoder89/bookrental/internal/domain/history"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HistoryRepo struct {
	base
}

func NewHistoryRepo(pool *pgxpool.Pool, prom *observability.Prom) *HistoryRepo {
	return &HistoryRepo{base{pool: pool, prom: prom}}
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID int64) ([]history.Entry, error) {
	var rows pgx.Rows

	err := r.observe("history.list_by_user", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT id, type, user_id, description, created_at
			FROM histories
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
		`, userID)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]history.Entry, 0)
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.ID, &e.Type, &e.UserID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
