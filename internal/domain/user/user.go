package user

import (
	"errors"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Plan         string    `json:"plan"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the redacted view of a user that travels inside access tokens.
// It never carries the password hash or timestamps.
type Profile struct {
	ID       int64  `json:"id,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Plan     string `json:"plan,omitempty"`
	IsAdmin  *bool  `json:"isAdmin,omitempty"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username or email already in use")
)

const DefaultPlan = "Silver"

func (u User) Profile() Profile {
	isAdmin := u.IsAdmin
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Plan:     u.Plan,
		IsAdmin:  &isAdmin,
	}
}

// Summary is the minimal identity used by the lookup-by-email flow.
func (u User) Summary() Profile {
	return Profile{
		UserID:   u.ID,
		Username: u.Username,
	}
}

// Admin reports whether the profile carries an explicit admin flag.
func (p Profile) Admin() bool {
	return p.IsAdmin != nil && *p.IsAdmin
}

// Subject returns whichever id field the profile was issued with.
func (p Profile) Subject() int64 {
	if p.ID != 0 {
		return p.ID
	}
	return p.UserID
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"omitempty,max=120"`
	Plan     string `json:"plan" binding:"omitempty,oneof=Silver Gold Diamond"`
}

// LoginRequest is bound without binding tags: missing fields are an
// authentication failure (401), not a validation failure.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest is a partial update: absent fields keep their stored
// value.
type UpdateProfileRequest struct {
	Email    *string `json:"email" binding:"omitnil,email"`
	FullName *string `json:"fullName" binding:"omitnil,max=120"`
}

// ProfileChanges carries the fields to overwrite; nil means unchanged.
type ProfileChanges struct {
	Email    *string
	FullName *string
}

func (r UpdateProfileRequest) Changes() ProfileChanges {
	return ProfileChanges{Email: r.Email, FullName: r.FullName}
}

type CreateParams struct {
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	Plan         string
	IsAdmin      bool
}

func NewCreateParams(req SignUpRequest, passwordHash string) CreateParams {
	plan := req.Plan
	if plan == "" {
		plan = DefaultPlan
	}
	return CreateParams{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		FullName:     req.FullName,
		Plan:         plan,
	}
}
