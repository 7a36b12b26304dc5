package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/bookrental/internal/domain/book"
	"github.com/geocoder89/bookrental/internal/http/handlers"
	"github.com/geocoder89/bookrental/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

type listBooksBody struct {
	Items      []book.Book `json:"items"`
	Count      int         `json:"count"`
	NextCursor *string     `json:"nextCursor"`
	HasMore    bool        `json:"hasMore"`
}

func newCatalogRouter(store *memory.Store) *gin.Engine {
	bh := handlers.NewBooksHandler(store.Books())
	ch := handlers.NewCategoriesHandler(store.Categories(), time.Minute)

	r := gin.New()
	r.GET("/books", bh.ListBooks)
	r.POST("/books", bh.CreateBook)
	r.GET("/books/category", ch.ListCategories)
	r.POST("/books/category", ch.CreateCategory)
	r.GET("/books/:bookId", bh.GetBook)
	r.PUT("/books/:bookId", bh.UpdateBook)
	r.DELETE("/books/:bookId", bh.DeleteBook)
	return r
}

func seedBooks(t *testing.T, store *memory.Store, n int) []book.Book {
	t.Helper()
	out := make([]book.Book, 0, n)
	for i := 0; i < n; i++ {
		b, err := store.Books().Create(context.Background(), book.CreateBookRequest{
			Title:    "Book " + string(rune('A'+i)),
			Author:   "Author",
			Quantity: 2,
		})
		if err != nil {
			t.Fatalf("seed book: %v", err)
		}
		out = append(out, b)
	}
	return out
}

func TestListBooks_CursorPagination(t *testing.T) {
	store := memory.NewStore()
	seeded := seedBooks(t, store, 3)
	r := newCatalogRouter(store)

	w := doJSON(r, http.MethodGet, "/books?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var page listBooksBody
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Count != 2 || !page.HasMore || page.NextCursor == nil {
		t.Fatalf("unexpected first page: %+v", page)
	}

	w = doJSON(r, http.MethodGet, "/books?limit=2&cursor="+*page.NextCursor, "")
	var next listBooksBody
	if err := json.Unmarshal(w.Body.Bytes(), &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if next.Count != 1 || next.HasMore || next.Items[0].ID != seeded[2].ID {
		t.Fatalf("unexpected second page: %+v", next)
	}
}

func TestListBooks_RejectsBadQuery(t *testing.T) {
	r := newCatalogRouter(memory.NewStore())

	for _, path := range []string{"/books?limit=0", "/books?limit=500", "/books?cursor=not-base64!", "/books?categoryId=x"} {
		if w := doJSON(r, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestListBooks_ETagNotModified(t *testing.T) {
	store := memory.NewStore()
	seedBooks(t, store, 2)
	r := newCatalogRouter(store)

	w := doJSON(r, http.MethodGet, "/books", "")
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestBookCRUD(t *testing.T) {
	store := memory.NewStore()
	r := newCatalogRouter(store)

	w := doJSON(r, http.MethodPost, "/books", `{"title":"Dune","author":"Frank Herbert","quantity":3}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var created book.Book
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if w := doJSON(r, http.MethodPost, "/books", `{"title":"Dune","author":"Frank Herbert","categoryId":42}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: expected 400, got %d", w.Code)
	}

	path := "/books/" + jsonID(created.ID)

	w = doJSON(r, http.MethodPut, path, `{"title":"Dune Messiah","author":"Frank Herbert","quantity":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, path, "")
	var got book.Book
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Dune Messiah" || got.Quantity != 1 {
		t.Fatalf("update not applied: %+v", got)
	}

	if w := doJSON(r, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Fatalf("after delete: expected 404, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/books/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
}

func TestCategories_CreateListAndConflict(t *testing.T) {
	r := newCatalogRouter(memory.NewStore())

	// warm the cache with an empty list; create must invalidate it
	w := doJSON(r, http.MethodGet, "/books/category", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}

	if w := doJSON(r, http.MethodPost, "/books/category", `{"name":"Fiction"}`); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPost, "/books/category", `{"name":"Fiction"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/books/category", "")
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("expected 1 category after create, got %d", body.Count)
	}
}
