package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type CatalogService interface {
	Create(ctx context.Context, req book.CreateRequest) (book.Book, error)
	List(ctx context.Context, availableOnly bool, page *utils.Page) ([]book.Book, error)
	Update(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error)
	Delete(ctx context.Context, id string) error
}

type BooksHandler struct {
	svc CatalogService
}

func NewBooksHandler(svc CatalogService) *BooksHandler {
	return &BooksHandler{svc: svc}
}

// GET /livros
func (h *BooksHandler) List(ctx *gin.Context) {
	h.list(ctx, false)
}

// GET /livros/disponiveis
func (h *BooksHandler) ListAvailable(ctx *gin.Context) {
	h.list(ctx, true)
}

// list answers with the whole catalog unless limite or pagina is given.
func (h *BooksHandler) list(ctx *gin.Context, availableOnly bool) {
	var page *utils.Page
	if ctx.Query("limite") != "" || ctx.Query("pagina") != "" {
		p, ok := parsePage(ctx)
		if !ok {
			return
		}
		page = &p
	}

	books, err := h.svc.List(ctx.Request.Context(), availableOnly, page)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}
	if books == nil {
		books = []book.Book{}
	}

	respondBooks(ctx, books)
}

// POST /livros
func (h *BooksHandler) Create(ctx *gin.Context) {
	var req book.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	b, err := h.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Book created successfully", "book", b)
}

// PUT /livros/:id
func (h *BooksHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, http.StatusNotFound, "Book")
	if !ok {
		return
	}

	var req book.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	b, err := h.svc.Update(ctx.Request.Context(), id, req)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Book updated successfully", "book", b)
}

// DELETE /livros/:id
func (h *BooksHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, http.StatusNotFound, "Book")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Book deleted successfully", "", nil)
}
