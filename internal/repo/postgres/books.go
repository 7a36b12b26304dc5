package postgres

import (
	"context"

	"github.com/geocoder89/bookrental/internal/domain/book"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, title, author, description, isbn, quantity, category_id, cover, created_at, updated_at`

type BooksRepo struct {
	base
}

func NewBooksRepo(pool *pgxpool.Pool, prom *observability.Prom) *BooksRepo {
	return &BooksRepo{base{pool: pool, prom: prom}}
}

func scanBook(row pgx.Row) (b book.Book, err error) {
	err = row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.ISBN, &b.Quantity, &b.CategoryID, &b.Cover, &b.CreatedAt, &b.UpdatedAt)
	return
}

func (r *BooksRepo) Create(ctx context.Context, req book.CreateBookRequest) (b book.Book, err error) {
	err = r.observe("books.create", func() error {
		b, err = scanBook(r.pool.QueryRow(ctx, `
			INSERT INTO books (title, author, description, isbn, quantity, category_id, cover)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING `+bookColumns,
			req.Title, req.Author, req.Description, req.ISBN, req.Quantity, req.CategoryID, req.Cover,
		))
		return err
	})

	if isForeignKeyViolation(err) {
		err = book.ErrUnknownCategory
	}
	return
}

func (r *BooksRepo) GetByID(ctx context.Context, id int64) (b book.Book, err error) {
	err = r.observe("books.get_by_id", func() error {
		b, err = scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
		return err
	})
	err = mapNoRows(err, book.ErrNotFound)
	return
}

// List pages through books in id order. AfterID is the keyset cursor.
func (r *BooksRepo) List(ctx context.Context, filter book.ListFilter) (items []book.Book, err error) {
	var rows pgx.Rows

	err = r.observe("books.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT `+bookColumns+`
			FROM books
			WHERE id > $1
			  AND ($2::bigint IS NULL OR category_id = $2)
			ORDER BY id ASC
			LIMIT $3
		`, filter.AfterID, filter.CategoryID, filter.Limit)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items = make([]book.Book, 0, filter.Limit)
	for rows.Next() {
		b, scanErr := scanBook(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, b)
	}

	if err = rows.Err(); err != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("books.list", "rows_err").Inc()
		}
		return nil, err
	}

	return items, nil
}

func (r *BooksRepo) Update(ctx context.Context, id int64, req book.UpdateBookRequest) (b book.Book, err error) {
	err = r.observe("books.update", func() error {
		b, err = scanBook(r.pool.QueryRow(ctx, `
			UPDATE books
			SET title = $2, author = $3, description = $4, isbn = $5,
			    quantity = $6, category_id = $7, cover = $8, updated_at = now()
			WHERE id = $1
			RETURNING `+bookColumns,
			id, req.Title, req.Author, req.Description, req.ISBN, req.Quantity, req.CategoryID, req.Cover,
		))
		return err
	})

	if isForeignKeyViolation(err) {
		err = book.ErrUnknownCategory
	}
	err = mapNoRows(err, book.ErrNotFound)
	return
}

func (r *BooksRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag

	err := r.observe("books.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}

	return nil
}
