package db_test

import (
	"context"
	"testing"

	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/db"
	"github.com/geocoder89/bookrental/internal/repo/memory"
	"github.com/geocoder89/bookrental/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	cfg := config.Config{
		AdminUsername: "librarian",
		AdminPassword: "s3cret-pass",
		AdminEmail:    "lib@example.com",
	}

	require.NoError(t, db.EnsureAdminUser(ctx, users, cfg))

	u, err := users.GetByUsername(ctx, "librarian")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, "Silver", u.Plan)
	assert.True(t, security.VerifyPassword("s3cret-pass", u.PasswordHash))

	// second run is a no-op rather than a duplicate error
	require.NoError(t, db.EnsureAdminUser(ctx, users, cfg))
}

func TestEnsureAdminUser_SkippedWithoutCredentials(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	require.NoError(t, db.EnsureAdminUser(ctx, users, config.Config{AdminUsername: "librarian"}))

	_, err := users.GetByUsername(ctx, "librarian")
	assert.Error(t, err)
}
