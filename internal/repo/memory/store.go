package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/bookrental/internal/domain/book"
	"github.com/geocoder89/bookrental/internal/domain/category"
	"github.com/geocoder89/bookrental/internal/domain/history"
	"github.com/geocoder89/bookrental/internal/domain/rental"
	"github.com/geocoder89/bookrental/internal/domain/user"
)

// Store is an in-memory stand-in for the Postgres schema. It keeps the same
// invariants as the SQL schema (unique username/email/category name, one open
// rental per user and book, non-negative stock) and is used by tests and by
// the API when started without a database.
type Store struct {
	mu sync.RWMutex

	seq        int64
	users      map[int64]user.User
	books      map[int64]book.Book
	categories map[int64]category.Category
	rentals    map[int64]rental.Rental
	histories  []history.Entry
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]user.User),
		books:      make(map[int64]book.Book),
		categories: make(map[int64]category.Category),
		rentals:    make(map[int64]rental.Rental),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() *UsersRepo           { return &UsersRepo{s} }
func (s *Store) Books() *BooksRepo           { return &BooksRepo{s} }
func (s *Store) Categories() *CategoriesRepo { return &CategoriesRepo{s} }
func (s *Store) Rentals() *RentalsRepo       { return &RentalsRepo{s} }
func (s *Store) History() *HistoryRepo       { return &HistoryRepo{s} }

// users

type UsersRepo struct{ s *Store }

func (r *UsersRepo) Create(_ context.Context, p user.CreateParams) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == p.Username || strings.EqualFold(u.Email, p.Email) {
			return user.User{}, user.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           r.s.nextID(),
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Email:        p.Email,
		FullName:     p.FullName,
		Plan:         p.Plan,
		IsAdmin:      p.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) find(match func(user.User) bool) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	return r.find(func(u user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *UsersRepo) UpdateProfile(_ context.Context, id int64, changes user.ProfileChanges) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if changes.Email != nil {
		for _, other := range r.s.users {
			if other.ID != id && strings.EqualFold(other.Email, *changes.Email) {
				return user.User{}, user.ErrAlreadyExists
			}
		}
		u.Email = *changes.Email
	}
	if changes.FullName != nil {
		u.FullName = *changes.FullName
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u

	return u, nil
}

// books

type BooksRepo struct{ s *Store }

func (r *BooksRepo) categoryExists(id *int64) bool {
	if id == nil {
		return true
	}
	_, ok := r.s.categories[*id]
	return ok
}

func (r *BooksRepo) Create(_ context.Context, req book.CreateBookRequest) (book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.categoryExists(req.CategoryID) {
		return book.Book{}, book.ErrUnknownCategory
	}

	now := time.Now().UTC()
	b := book.Book{
		ID:          r.s.nextID(),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
		Cover:       req.Cover,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.books[b.ID] = b

	return b, nil
}

func (r *BooksRepo) GetByID(_ context.Context, id int64) (book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (r *BooksRepo) List(_ context.Context, filter book.ListFilter) ([]book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]book.Book, 0)
	for _, b := range r.s.books {
		if b.ID <= filter.AfterID {
			continue
		}
		if filter.CategoryID != nil && (b.CategoryID == nil || *b.CategoryID != *filter.CategoryID) {
			continue
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *BooksRepo) Update(_ context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	if !r.categoryExists(req.CategoryID) {
		return book.Book{}, book.ErrUnknownCategory
	}

	b.Title = req.Title
	b.Author = req.Author
	b.Description = req.Description
	b.ISBN = req.ISBN
	b.Quantity = req.Quantity
	b.CategoryID = req.CategoryID
	b.Cover = req.Cover
	b.UpdatedAt = time.Now().UTC()
	r.s.books[id] = b

	return b, nil
}

func (r *BooksRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(r.s.books, id)

	for rid, rent := range r.s.rentals {
		if rent.BookID == id {
			delete(r.s.rentals, rid)
		}
	}
	return nil
}

// categories

type CategoriesRepo struct{ s *Store }

func (r *CategoriesRepo) Create(_ context.Context, name string) (category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Name == name {
			return category.Category{}, category.ErrAlreadyExists
		}
	}

	c := category.Category{ID: r.s.nextID(), Name: name, CreatedAt: time.Now().UTC()}
	r.s.categories[c.ID] = c

	return c, nil
}

func (r *CategoriesRepo) List(_ context.Context) ([]category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]category.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// rentals

type RentalsRepo struct{ s *Store }

func (r *RentalsRepo) activeLocked(userID, bookID int64) (rental.Rental, bool) {
	for _, rent := range r.s.rentals {
		if rent.UserID == userID && rent.BookID == bookID && !rent.Returned {
			return rent, true
		}
	}
	return rental.Rental{}, false
}

func (r *RentalsRepo) HasActive(_ context.Context, userID, bookID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.activeLocked(userID, bookID)
	return ok, nil
}

func (r *RentalsRepo) countActiveLocked(userID int64) int {
	n := 0
	for _, rent := range r.s.rentals {
		if rent.UserID == userID && !rent.Returned {
			n++
		}
	}
	return n
}

func (r *RentalsRepo) CountActive(_ context.Context, userID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.countActiveLocked(userID), nil
}

// Rent checks the user, the quota and the stock under the store lock, in the
// same order as the Postgres transaction.
func (r *RentalsRepo) Rent(_ context.Context, userID, bookID int64, limit int) (rental.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return rental.Rental{}, user.ErrNotFound
	}
	if r.countActiveLocked(userID) >= limit {
		return rental.Rental{}, rental.ErrQuotaExceeded
	}

	b, ok := r.s.books[bookID]
	if !ok {
		return rental.Rental{}, book.ErrNotFound
	}
	if b.Quantity <= 0 {
		return rental.Rental{}, book.ErrUnavailable
	}
	if _, open := r.activeLocked(userID, bookID); open {
		return rental.Rental{}, rental.ErrAlreadyRented
	}

	now := time.Now().UTC()
	rent := rental.Rental{
		ID:        r.s.nextID(),
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.rentals[rent.ID] = rent

	b.Quantity--
	b.UpdatedAt = now
	r.s.books[bookID] = b

	r.s.appendHistoryLocked(history.RentEntry(userID, b.Title))

	return rent, nil
}

func (r *RentalsRepo) Return(_ context.Context, userID, bookID int64) (rental.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rent, ok := r.activeLocked(userID, bookID)
	if !ok {
		return rental.Rental{}, rental.ErrNotRented
	}

	b, ok := r.s.books[bookID]
	if !ok {
		return rental.Rental{}, book.ErrNotFound
	}

	now := time.Now().UTC()
	rent.Returned = true
	rent.ReturnDate = &now
	rent.UpdatedAt = now
	r.s.rentals[rent.ID] = rent

	b.Quantity++
	b.UpdatedAt = now
	r.s.books[bookID] = b

	r.s.appendHistoryLocked(history.ReturnEntry(userID, b.Title))

	return rent, nil
}

func (r *RentalsRepo) ListByUser(_ context.Context, userID int64, filter rental.ListFilter) ([]rental.Rental, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]rental.Rental, 0)
	for _, rent := range r.s.rentals {
		if rent.UserID != userID {
			continue
		}
		if filter.Returned != nil && rent.Returned != *filter.Returned {
			continue
		}
		out = append(out, rent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out, nil
}

// history

type HistoryRepo struct{ s *Store }

func (s *Store) appendHistoryLocked(e history.Entry) {
	e.ID = s.nextID()
	s.histories = append(s.histories, e)
}

func (r *HistoryRepo) ListByUser(_ context.Context, userID int64) ([]history.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]history.Entry, 0)
	for i := len(r.s.histories) - 1; i >= 0; i-- {
		if r.s.histories[i].UserID == userID {
			out = append(out, r.s.histories[i])
		}
	}
	return out, nil
}
