package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/bookrental/internal/domain/book"
	"github.com/geocoder89/bookrental/internal/domain/history"
	"github.com/geocoder89/bookrental/internal/domain/rental"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const rentalColumns = `id, user_id, book_id, returned, return_date, created_at, updated_at`

type RentalsRepo struct {
	base
}

func NewRentalsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RentalsRepo {
	return &RentalsRepo{base{pool: pool, prom: prom}}
}

func scanRental(row pgx.Row) (r rental.Rental, err error) {
	err = row.Scan(&r.ID, &r.UserID, &r.BookID, &r.Returned, &r.ReturnDate, &r.CreatedAt, &r.UpdatedAt)
	return
}

func (repo *RentalsRepo) HasActive(ctx context.Context, userID, bookID int64) (exists bool, err error) {
	err = repo.observe("rentals.has_active", func() error {
		return repo.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM rented_books
			WHERE user_id = $1 AND book_id = $2 AND returned = FALSE
		)`, userID, bookID).Scan(&exists)
	})
	return
}

func (repo *RentalsRepo) CountActive(ctx context.Context, userID int64) (count int, err error) {
	err = repo.observe("rentals.count_active", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM rented_books WHERE user_id = $1 AND returned = FALSE`,
			userID,
		).Scan(&count)
	})
	return
}

// Rent takes one copy of the book for the user in a single transaction. The
// user row is locked first so concurrent rentals for the same user serialize
// on the quota count; at most limit open rentals are allowed.
func (repo *RentalsRepo) Rent(ctx context.Context, userID, bookID int64, limit int) (r rental.Rental, err error) {
	ctx, span := observability.StartSpan(ctx, "rentals.Rent", rentalAttrs(userID, bookID)...)
	defer func() { observability.EndSpan(span, err) }()

	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("rentals.rent.lock_user", func() error {
		var one int
		return tx.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&one)
	})
	if err != nil {
		err = mapNoRows(err, user.ErrNotFound)
		return
	}

	var active int
	err = repo.observe("rentals.rent.count_active", func() error {
		return tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM rented_books WHERE user_id = $1 AND returned = FALSE`,
			userID,
		).Scan(&active)
	})
	if err != nil {
		return
	}
	if active >= limit {
		err = rental.ErrQuotaExceeded
		return
	}

	var (
		title    string
		quantity int
	)

	err = repo.observe("rentals.rent.lock_book", func() error {
		return tx.QueryRow(ctx,
			`SELECT title, quantity FROM books WHERE id = $1 FOR UPDATE`,
			bookID,
		).Scan(&title, &quantity)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = book.ErrNotFound
		}
		return
	}

	if quantity <= 0 {
		err = book.ErrUnavailable
		return
	}

	err = repo.observe("rentals.rent.insert", func() error {
		var e error
		r, e = scanRental(tx.QueryRow(ctx, `
			INSERT INTO rented_books (user_id, book_id)
			VALUES ($1, $2)
			RETURNING `+rentalColumns,
			userID, bookID,
		))
		return e
	})
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			err = rental.ErrAlreadyRented
		case isForeignKeyViolation(err):
			err = user.ErrNotFound
		}
		return
	}

	err = repo.observe("rentals.rent.decrement", func() error {
		_, e := tx.Exec(ctx, `UPDATE books SET quantity = quantity - 1, updated_at = now() WHERE id = $1`, bookID)
		return e
	})
	if err != nil {
		return
	}

	if err = repo.insertHistory(ctx, tx, history.RentEntry(userID, title)); err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

// Return closes the caller's open rental for the book and puts the copy back.
func (repo *RentalsRepo) Return(ctx context.Context, userID, bookID int64) (r rental.Rental, err error) {
	ctx, span := observability.StartSpan(ctx, "rentals.Return", rentalAttrs(userID, bookID)...)
	defer func() { observability.EndSpan(span, err) }()

	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("rentals.return.close", func() error {
		var e error
		r, e = scanRental(tx.QueryRow(ctx, `
			UPDATE rented_books
			SET returned = TRUE, return_date = now(), updated_at = now()
			WHERE user_id = $1 AND book_id = $2 AND returned = FALSE
			RETURNING `+rentalColumns,
			userID, bookID,
		))
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = rental.ErrNotRented
		}
		return
	}

	var title string
	err = repo.observe("rentals.return.increment", func() error {
		return tx.QueryRow(ctx,
			`UPDATE books SET quantity = quantity + 1, updated_at = now() WHERE id = $1 RETURNING title`,
			bookID,
		).Scan(&title)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = book.ErrNotFound
		}
		return
	}

	if err = repo.insertHistory(ctx, tx, history.ReturnEntry(userID, title)); err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func (repo *RentalsRepo) ListByUser(ctx context.Context, userID int64, filter rental.ListFilter) ([]rental.Rental, error) {
	var rows pgx.Rows

	err := repo.observe("rentals.list_by_user", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
			SELECT `+rentalColumns+`
			FROM rented_books
			WHERE user_id = $1
			  AND ($2::boolean IS NULL OR returned = $2)
			ORDER BY created_at DESC, id DESC
		`, userID, filter.Returned)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]rental.Rental, 0)
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

func (repo *RentalsRepo) insertHistory(ctx context.Context, tx pgx.Tx, e history.Entry) error {
	return repo.observe("history.insert", func() error {
		_, err := tx.Exec(ctx,
			`INSERT INTO histories (type, user_id, description, created_at) VALUES ($1,$2,$3,$4)`,
			e.Type, e.UserID, e.Description, e.CreatedAt,
		)
		return err
	})
}

func rentalAttrs(userID, bookID int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("rental.user_id", userID),
		attribute.Int64("rental.book_id", bookID),
	}
}
