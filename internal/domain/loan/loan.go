package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxActivePerUser is the borrowing cap checked before a loan is created.
const MaxActivePerUser = 3

type Loan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"idUsuario"`
	BookID    string    `json:"idLivro"`
	CreatedAt time.Time `json:"dataEmprestimo"`
}

var (
	ErrNotFound        = errors.New("loan not found")
	ErrLimitExceeded   = errors.New("user already holds the maximum number of loans")
	ErrBookUnavailable = errors.New("book is unavailable")
)

type CreateRequest struct {
	UserID string `json:"idUsuario" binding:"required,uuid"`
	BookID string `json:"idLivro" binding:"required,uuid"`
}

type ListFilter struct {
	UserID *string
	Limit  int
	Offset int
}

func New(userID, bookID string) Loan {
	return Loan{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: time.Now().UTC(),
	}
}
