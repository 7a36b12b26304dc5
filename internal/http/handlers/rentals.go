package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/book"
	"github.com/geocoder89/bookrental/internal/domain/history"
	"github.com/geocoder89/bookrental/internal/domain/rental"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/http/middlewares"
	"github.com/geocoder89/bookrental/internal/policy"
	"github.com/geocoder89/bookrental/internal/utils"
	"github.com/gin-gonic/gin"
)

type RentalStore interface {
	Rent(ctx context.Context, userID, bookID int64, limit int) (rental.Rental, error)
	Return(ctx context.Context, userID, bookID int64) (rental.Rental, error)
	ListByUser(ctx context.Context, userID int64, filter rental.ListFilter) ([]rental.Rental, error)
}

type HistoryStore interface {
	ListByUser(ctx context.Context, userID int64) ([]history.Entry, error)
}

type RentalsHandler struct {
	rentals RentalStore
	history HistoryStore
}

func NewRentalsHandler(rentals RentalStore, history HistoryStore) *RentalsHandler {
	return &RentalsHandler{
		rentals: rentals,
		history: history,
	}
}

// RentBook runs after IsLoggedIn, CheckUserPlan and HasRentedBefore. The
// store re-checks the quota and the open-rental rule inside its transaction.
func (h *RentalsHandler) RentBook(ctx *gin.Context) {
	target, aerr := middlewares.ResolveRentalTarget(ctx)
	if aerr != nil {
		RespondError(ctx, aerr)
		return
	}

	var plan string
	if claims, ok := middlewares.ClaimsFromContext(ctx); ok {
		plan = claims.CurrentUser.Plan
	}
	quota := policy.QuotaFor(plan)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.rentals.Rent(cctx, target.UserID, target.BookID, quota.Limit)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, rental.ErrQuotaExceeded):
			RespondError(ctx, apperr.New(apperr.QuotaExceeded, quota.Message))
		case errors.Is(err, book.ErrNotFound):
			RespondNotFound(ctx, "Book not found")
		case errors.Is(err, book.ErrUnavailable):
			RespondError(ctx, apperr.New(apperr.Unavailable, "Book is not available"))
		case errors.Is(err, rental.ErrAlreadyRented):
			RespondError(ctx, apperr.New(apperr.AlreadyRented, "You have rented that book before"))
		default:
			RespondInternal(ctx, "Could not rent book", err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "You have successfully rented the book",
		"rental":  r,
	})
}

func (h *RentalsHandler) ReturnBook(ctx *gin.Context) {
	target, aerr := middlewares.ResolveRentalTarget(ctx)
	if aerr != nil {
		RespondError(ctx, aerr)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.rentals.Return(cctx, target.UserID, target.BookID)
	if err != nil {
		if errors.Is(err, rental.ErrNotRented) || errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "You have not rented that book")
			return
		}
		RespondInternal(ctx, "Could not return book", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "You have successfully returned the book",
		"rental":  r,
	})
}

// ListRentals accepts ?returned=true|false; anything else lists all rentals.
func (h *RentalsHandler) ListRentals(ctx *gin.Context) {
	userID, ok := utils.ParseID(ctx.Param("userId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id supplied!!!", nil)
		return
	}

	var filter rental.ListFilter
	if raw := ctx.Query("returned"); raw != "" {
		returned, err := strconv.ParseBool(raw)
		if err != nil {
			RespondBadRequest(ctx, "returned must be true or false", gin.H{"returned": raw})
			return
		}
		filter.Returned = &returned
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.rentals.ListByUser(cctx, userID, filter)
	if err != nil {
		RespondInternal(ctx, "Could not list rented books", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *RentalsHandler) ListHistory(ctx *gin.Context) {
	userID, ok := utils.ParseID(ctx.Param("userId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id supplied!!!", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.history.ListByUser(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not load history", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
