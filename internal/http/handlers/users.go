package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/http/middlewares"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/geocoder89/bookrental/internal/security"
	"github.com/geocoder89/bookrental/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserStore interface {
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, changes user.ProfileChanges) (user.User, error)
}

type TokenIssuer interface {
	Issue(profile user.Profile) (string, error)
}

type UsersHandler struct {
	users  UserStore
	tokens TokenIssuer
	prom   *observability.Prom
}

func NewUsersHandler(users UserStore, tokens TokenIssuer, prom *observability.Prom) *UsersHandler {
	return &UsersHandler{
		users:  users,
		tokens: tokens,
		prom:   prom,
	}
}

type tokenResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
}

// issue signs a token for profile and writes it with status.
func (h *UsersHandler) issue(ctx *gin.Context, status int, event, message string, profile user.Profile) {
	token, err := h.tokens.Issue(profile)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token", err)
		return
	}

	h.prom.TokenIssued(event)
	ctx.JSON(status, tokenResponse{Message: message, Token: token})
}

// SignUp creates a user and returns a token for the new account. Store
// failures, including duplicate usernames, surface as 500 with the raw error.
func (h *UsersHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.Create(cctx, user.NewCreateParams(req, hash))
	if err != nil {
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	h.issue(ctx, http.StatusCreated, "signup", "Signed up successfully", u.Profile())
}

// Login issues a token for the user ValidateLogin already verified, or checks
// the credentials itself when mounted without that guard.
func (h *UsersHandler) Login(ctx *gin.Context) {
	u, ok := middlewares.LoginUserFromContext(ctx)
	if !ok {
		var req user.LoginRequest
		_ = ctx.ShouldBindBodyWith(&req, binding.JSON)

		var aerr *apperr.Error
		u, aerr = middlewares.Authenticate(ctx.Request.Context(), h.users, req)
		if aerr != nil {
			if aerr.Cause != nil {
				_ = ctx.Error(aerr.Cause)
			}
			RespondError(ctx, aerr)
			return
		}
	}

	h.issue(ctx, http.StatusOK, "login", "Logged In Successfully", u.Profile())
}

func (h *UsersHandler) EditProfile(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("userId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id supplied!!!", nil)
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, id, req.Changes())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFoundErr(ctx, "User not found", err)
			return
		}
		RespondInternal(ctx, "Could not update profile", err)
		return
	}

	h.issue(ctx, http.StatusOK, "profile", "Profile updated successfully", u.Profile())
}

// GetUserByID answers with a token wrapping the full profile.
func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("userId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id supplied!!!", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		RespondNotFoundErr(ctx, "User not found", err)
		return
	}

	h.issue(ctx, http.StatusCreated, "lookup", "", u.Profile())
}

type emailLookupRequest struct {
	Email string `json:"email"`
}

// GetUserByEmail takes the address from ?email= or, failing that, a JSON
// body, and answers with a token carrying only {userId, username}.
func (h *UsersHandler) GetUserByEmail(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.Query("email"))
	if email == "" {
		var req emailLookupRequest
		_ = ctx.ShouldBindBodyWith(&req, binding.JSON)
		email = strings.TrimSpace(req.Email)
	}

	if email == "" {
		RespondBadRequest(ctx, "Please provide an email address", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)
	if err != nil {
		RespondNotFoundErr(ctx, "User not found", err)
		return
	}

	h.issue(ctx, http.StatusCreated, "lookup", "", u.Summary())
}
