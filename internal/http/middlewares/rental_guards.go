package middlewares

import (
	"time"

	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/policy"
	"github.com/geocoder89/bookrental/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// RentalTarget is the (user, book) pair a rental request is about: the user
// from the :userId path segment, the book from the JSON body's bookId.
type RentalTarget struct {
	UserID int64
	BookID int64
}

type rentalBody struct {
	BookID any `json:"bookId"`
}

// ResolveRentalTarget parses and validates the rental ids once per request.
func ResolveRentalTarget(c *gin.Context) (RentalTarget, *apperr.Error) {
	if v, ok := c.Get(ctxRentalKey); ok {
		if t, ok := v.(RentalTarget); ok {
			return t, nil
		}
	}

	userID, ok := utils.ParseID(c.Param("userId"))
	if !ok {
		return RentalTarget{}, apperr.New(apperr.MalformedInput, "Invalid user id supplied!!!")
	}

	var body rentalBody
	_ = c.ShouldBindBodyWith(&body, binding.JSON)

	bookID, ok := utils.ParseJSONID(body.BookID)
	if !ok {
		return RentalTarget{}, apperr.New(apperr.MalformedInput, "Invalid book id supplied!!!")
	}

	t := RentalTarget{UserID: userID, BookID: bookID}
	c.Set(ctxRentalKey, t)

	return t, nil
}

// CheckUserPlan rejects malformed ids, then rejects users whose unreturned
// rentals already reach their plan's quota.
func (g *Guards) CheckUserPlan() Guard {
	return Guard{
		Name: "check_user_plan",
		Check: func(c *gin.Context) *apperr.Error {
			target, aerr := ResolveRentalTarget(c)
			if aerr != nil {
				return aerr
			}

			claims, ok := ClaimsFromContext(c)
			if !ok {
				return apperr.New(apperr.TokenMissing, "Access denied, Authentication token does not exist")
			}

			cctx, cancel := config.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			active, err := g.rentals.CountActive(cctx, target.UserID)
			if err != nil {
				return apperr.Persistence("Could not check rental limit", err)
			}

			quota := policy.QuotaFor(claims.CurrentUser.Plan)
			if !quota.Allows(active) {
				return apperr.New(apperr.QuotaExceeded, quota.Message)
			}

			return nil
		},
	}
}

// HasRentedBefore rejects a rental when the user still holds an unreturned
// copy of the same book.
func (g *Guards) HasRentedBefore() Guard {
	return Guard{
		Name: "has_rented_before",
		Check: func(c *gin.Context) *apperr.Error {
			target, aerr := ResolveRentalTarget(c)
			if aerr != nil {
				return aerr
			}

			cctx, cancel := config.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			rented, err := g.rentals.HasActive(cctx, target.UserID, target.BookID)
			if err != nil {
				return apperr.Persistence("Could not check existing rentals", err)
			}

			if rented {
				return apperr.New(apperr.AlreadyRented, "You have rented that book before")
			}

			return nil
		},
	}
}
