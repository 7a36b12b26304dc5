package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/book"
	"github.com/geocoder89/bookrental/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultBooksLimit = 20
	maxBooksLimit     = 100
)

type BookStore interface {
	Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error)
	GetByID(ctx context.Context, id int64) (book.Book, error)
	List(ctx context.Context, filter book.ListFilter) ([]book.Book, error)
	Update(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error)
	Delete(ctx context.Context, id int64) error
}

type BooksHandler struct {
	books BookStore
}

func NewBooksHandler(books BookStore) *BooksHandler {
	return &BooksHandler{books: books}
}

type listBooksResponse struct {
	Items      []book.Book `json:"items"`
	Count      int         `json:"count"`
	Limit      int         `json:"limit"`
	NextCursor *string     `json:"nextCursor,omitempty"`
	HasMore    bool        `json:"hasMore"`
}

// ListBooks pages through the catalog by id with an opaque cursor. It fetches
// one extra row to learn whether another page exists.
func (h *BooksHandler) ListBooks(ctx *gin.Context) {
	limit := defaultBooksLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxBooksLimit {
			RespondBadRequest(ctx, "limit must be between 1 and 100", gin.H{"limit": raw})
			return
		}
		limit = n
	}

	filter := book.ListFilter{Limit: limit + 1}

	if raw := ctx.Query("categoryId"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			RespondBadRequest(ctx, "Invalid category id supplied", gin.H{"categoryId": raw})
			return
		}
		filter.CategoryID = &id
	}

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeBookCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}
		filter.AfterID = cur.ID
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.books.List(cctx, filter)
	if err != nil {
		RespondInternal(ctx, "Could not list books", err)
		return
	}

	resp := listBooksResponse{Limit: limit}

	if len(items) > limit {
		items = items[:limit]
		resp.HasMore = true

		next, err := utils.EncodeBookCursor(items[len(items)-1].ID)
		if err != nil {
			RespondInternal(ctx, "Could not list books", err)
			return
		}
		resp.NextCursor = &next
	}

	resp.Items = items
	resp.Count = len(items)

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *BooksHandler) GetBook(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("bookId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid book id supplied!!!", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	b, err := h.books.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not fetch book", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, b)
}

func (h *BooksHandler) CreateBook(ctx *gin.Context) {
	var req book.CreateBookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	b, err := h.books.Create(cctx, req)
	if err != nil {
		if errors.Is(err, book.ErrUnknownCategory) {
			RespondBadRequest(ctx, "Category does not exist", gin.H{"categoryId": req.CategoryID})
			return
		}
		RespondInternal(ctx, "Could not create book", err)
		return
	}

	ctx.JSON(http.StatusCreated, b)
}

func (h *BooksHandler) UpdateBook(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("bookId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid book id supplied!!!", nil)
		return
	}

	var req book.UpdateBookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	b, err := h.books.Update(cctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrNotFound):
			RespondNotFound(ctx, "Book not found")
		case errors.Is(err, book.ErrUnknownCategory):
			RespondBadRequest(ctx, "Category does not exist", gin.H{"categoryId": req.CategoryID})
		default:
			RespondInternal(ctx, "Could not update book", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, b)
}

func (h *BooksHandler) DeleteBook(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("bookId"))
	if !ok {
		RespondBadRequest(ctx, "Invalid book id supplied!!!", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.books.Delete(cctx, id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not delete book", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
