package book

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is numeric on the wire: 1 available, 0 unavailable.
type Status int

const (
	StatusUnavailable Status = 0
	StatusAvailable   Status = 1
)

func (s Status) IsValid() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

func (s Status) String() string {
	if s == StatusAvailable {
		return "available"
	}
	return "unavailable"
}

type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"titulo"`
	Author    string    `json:"autor"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound = errors.New("book not found")
	ErrOnLoan   = errors.New("book has active loans")
)

type CreateRequest struct {
	Title  string  `json:"titulo" binding:"required,max=300"`
	Author string  `json:"autor" binding:"required,max=200"`
	Status *Status `json:"status" binding:"omitempty,oneof=0 1"`
}

// a full update payload; the status must be sent explicitly.
type UpdateRequest struct {
	Title  string  `json:"titulo" binding:"required,max=300"`
	Author string  `json:"autor" binding:"required,max=200"`
	Status *Status `json:"status" binding:"required,oneof=0 1"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

func NewFromCreateRequest(req CreateRequest) Book {
	now := time.Now().UTC()

	status := StatusAvailable
	if req.Status != nil {
		status = *req.Status
	}

	return Book{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Author:    req.Author,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
