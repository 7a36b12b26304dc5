package rental

import (
	"errors"
	"time"
)

// Rental mirrors a rented_books row.
type Rental struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	BookID     int64      `json:"bookId"`
	Returned   bool       `json:"returned"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

var (
	ErrAlreadyRented = errors.New("book already rented by user")
	ErrNotRented     = errors.New("no active rental for this book")
	ErrQuotaExceeded = errors.New("plan rental quota reached")
)

type ListFilter struct {
	Returned *bool
}
