package book

import (
	"errors"
	"time"
)

type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	ISBN        string    `json:"isbn,omitempty"`
	Quantity    int       `json:"quantity"`
	CategoryID  *int64    `json:"categoryId,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var (
	ErrNotFound    = errors.New("book not found")
	ErrUnavailable = errors.New("book is not available")
	// categoryId on a create/update does not reference an existing category
	ErrUnknownCategory = errors.New("unknown category")
)

type ListFilter struct {
	CategoryID *int64
	Limit      int
	AfterID    int64
}

type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Author      string `json:"author" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ISBN        string `json:"isbn" binding:"omitempty,max=20"`
	Quantity    int    `json:"quantity" binding:"min=0,max=10000"`
	CategoryID  *int64 `json:"categoryId" binding:"omitempty,min=1"`
	Cover       string `json:"cover" binding:"omitempty,url"`
}

// full replacement payload
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Author      string `json:"author" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ISBN        string `json:"isbn" binding:"omitempty,max=20"`
	Quantity    int    `json:"quantity" binding:"min=0,max=10000"`
	CategoryID  *int64 `json:"categoryId" binding:"omitempty,min=1"`
	Cover       string `json:"cover" binding:"omitempty,url"`
}
