package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, password_hash, email, full_name, plan, is_admin, created_at, updated_at`

type UsersRepo struct {
	base
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{pool: pool, prom: prom}}
}

func scanUser(row pgx.Row) (u user.User, err error) {
	err = row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.FullName,
		&u.Plan,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (u user.User, err error) {
	err = r.observe("users.create", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (username, password_hash, email, full_name, plan, is_admin)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 RETURNING `+userColumns,
			p.Username, p.PasswordHash, p.Email, p.FullName, p.Plan, p.IsAdmin,
		))
		return err
	})

	if IsUniqueViolation(err) {
		err = fmt.Errorf("%w: %v", user.ErrAlreadyExists, err)
	}
	return
}

func (r *UsersRepo) getBy(ctx context.Context, op, column string, arg any) (u user.User, err error) {
	err = r.observe(op, func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`,
			arg,
		))
		return err
	})
	err = mapNoRows(err, user.ErrNotFound)
	return
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_username", "username", username)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getBy(ctx, "users.get_by_id", "id", id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_email", "email", email)
}

// UpdateProfile overwrites the fields present in changes and returns the
// reloaded row.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id int64, changes user.ProfileChanges) (u user.User, err error) {
	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			 SET email = COALESCE($2, email),
			     full_name = COALESCE($3, full_name),
			     updated_at = now()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, changes.Email, changes.FullName,
		))
		return err
	})

	if IsUniqueViolation(err) {
		return u, fmt.Errorf("%w: %v", user.ErrAlreadyExists, err)
	}
	err = mapNoRows(err, user.ErrNotFound)
	return
}
