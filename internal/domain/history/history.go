package history

import (
	"fmt"
	"time"
)

const (
	TypeRent   = "rent"
	TypeReturn = "return"
)

type Entry struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	UserID      int64     `json:"userId"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func RentEntry(userID int64, title string) Entry {
	return Entry{
		Type:        TypeRent,
		UserID:      userID,
		Description: fmt.Sprintf("rented %q", title),
		CreatedAt:   time.Now().UTC(),
	}
}

func ReturnEntry(userID int64, title string) Entry {
	return Entry{
		Type:        TypeReturn,
		UserID:      userID,
		Description: fmt.Sprintf("returned %q", title),
		CreatedAt:   time.Now().UTC(),
	}
}
