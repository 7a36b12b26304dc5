package middlewares

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	MissingCredentialsMessage = "Please provide your username or password to login"
	InvalidCredentialsMessage = "Invalid Credentials."
)

// ValidateLogin checks the submitted username/password against the stored
// hash. On success the matched user is kept on the context for the handler.
func (g *Guards) ValidateLogin() Guard {
	return Guard{
		Name: "validate_login",
		Check: func(c *gin.Context) *apperr.Error {
			var req user.LoginRequest
			if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil && !errors.Is(err, io.EOF) {
				return apperr.New(apperr.MalformedInput, "Invalid request body")
			}

			u, aerr := Authenticate(c.Request.Context(), g.users, req)
			if aerr != nil {
				return aerr
			}

			c.Set(ctxLoginUserKey, u)
			return nil
		},
	}
}

// Authenticate resolves credentials to a user. Unknown usernames and wrong
// passwords are indistinguishable to the caller.
func Authenticate(ctx context.Context, users UserLookup, req user.LoginRequest) (user.User, *apperr.Error) {
	if req.Username == "" || req.Password == "" {
		return user.User{}, apperr.New(apperr.MissingCredentials, MissingCredentialsMessage)
	}

	cctx, cancel := config.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	u, err := users.GetByUsername(cctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.New(apperr.InvalidCredentials, InvalidCredentialsMessage)
		}
		return user.User{}, apperr.Persistence("Could not sign in", err)
	}

	if !security.VerifyPassword(req.Password, u.PasswordHash) {
		return user.User{}, apperr.New(apperr.InvalidCredentials, InvalidCredentialsMessage)
	}

	return u, nil
}

func LoginUserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxLoginUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
