package middlewares

import (
	"context"
	"strings"

	"github.com/geocoder89/bookrental/internal/actorctx"
	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/auth"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/gin-gonic/gin"
)

const accessTokenHeader = "x-access-token"

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type RentalLookup interface {
	HasActive(ctx context.Context, userID, bookID int64) (bool, error)
	CountActive(ctx context.Context, userID int64) (int, error)
}

// Guards builds the route guards over their collaborators.
type Guards struct {
	tokens  TokenVerifier
	users   UserLookup
	rentals RentalLookup
	prom    *observability.Prom
}

func NewGuards(tokens TokenVerifier, users UserLookup, rentals RentalLookup, prom *observability.Prom) *Guards {
	return &Guards{
		tokens:  tokens,
		users:   users,
		rentals: rentals,
		prom:    prom,
	}
}

// Chain composes guards into a single gin handler.
func (g *Guards) Chain(guards ...Guard) gin.HandlerFunc {
	return Chain(g.prom, guards...)
}

// IsLoggedIn admits requests carrying a valid access token, taken from
// "Authorization: Bearer <token>" or, when that header is absent, from
// "x-access-token".
func (g *Guards) IsLoggedIn() Guard {
	return Guard{
		Name: "is_logged_in",
		Check: func(c *gin.Context) *apperr.Error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return apperr.New(apperr.TokenMissing, "Access denied, Authentication token does not exist")
			}

			claims, err := g.tokens.Verify(raw)
			if err != nil {
				return apperr.New(apperr.TokenInvalidOrExpired, "Failed to Authenticate Token")
			}

			c.Set(ctxClaimsKey, claims)
			c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), claims.CurrentUser.Subject()))

			return nil
		},
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}

	return strings.TrimSpace(c.GetHeader(accessTokenHeader))
}

// ClaimsFromContext returns the claims stored by IsLoggedIn.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
