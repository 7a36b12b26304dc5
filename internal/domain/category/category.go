package category

import (
	"errors"
	"time"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrAlreadyExists = errors.New("category already exists")

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=80"`
}
