package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/security"
)

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
}

// EnsureAdminUser creates the bootstrap admin when ADMIN_USERNAME and
// ADMIN_PASSWORD are set and that username is still free. An existing user
// with the name is left untouched, admin or not.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	u, err := users.Create(ctx, user.CreateParams{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Email:        cfg.AdminEmail,
		FullName:     cfg.AdminFullName,
		Plan:         user.DefaultPlan,
		IsAdmin:      true,
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "admin user created", "username", u.Username, "id", u.ID)
	return nil
}
