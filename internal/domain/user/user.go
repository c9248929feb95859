package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email is already in use")
	ErrAdminExists = errors.New("an administrator already exists")
)

// CredentialsRequest is shared by registration, admin provisioning and
// both update routes. The password is always required and always re-hashed.
type CredentialsRequest struct {
	Name            string `json:"nome" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"senha" binding:"required,min=4,max=72"`
	PasswordConfirm string `json:"senha2" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"senha" binding:"required"`
}

func New(req CredentialsRequest, passwordHash string, role Role) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
