package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/http/middlewares"
	"github.com/geocoder89/libraryhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type LoanService interface {
	Create(ctx context.Context, req loan.CreateRequest) (loan.Loan, error)
	List(ctx context.Context, page utils.Page) ([]loan.Loan, error)
	ListForUser(ctx context.Context, userID string, page utils.Page) ([]loan.Loan, error)
	Delete(ctx context.Context, loanID string) error
	DeleteOwn(ctx context.Context, userID, loanID string) error
}

// Missing records on loan routes are answered with 400.
const loanNotFoundStatus = http.StatusBadRequest

type LoansHandler struct {
	svc LoanService
}

func NewLoansHandler(svc LoanService) *LoansHandler {
	return &LoansHandler{svc: svc}
}

// POST /emprestimos
func (h *LoansHandler) Create(ctx *gin.Context) {
	var req loan.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	l, err := h.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		respondDomainError(ctx, err, loanNotFoundStatus)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Loan created successfully", "loan", l)
}

// GET /emprestimos
func (h *LoansHandler) List(ctx *gin.Context) {
	page, ok := parsePage(ctx)
	if !ok {
		return
	}

	loans, err := h.svc.List(ctx.Request.Context(), page)
	if err != nil {
		respondDomainError(ctx, err, loanNotFoundStatus)
		return
	}

	ctx.JSON(http.StatusOK, nonNil(loans))
}

// DELETE /emprestimos/:id
func (h *LoansHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, loanNotFoundStatus, "Loan")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		respondDomainError(ctx, err, loanNotFoundStatus)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Loan deleted successfully", "", nil)
}

// GET /emprestimos/meus
func (h *LoansHandler) ListMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	page, ok := parsePage(ctx)
	if !ok {
		return
	}

	loans, err := h.svc.ListForUser(ctx.Request.Context(), userID, page)
	if err != nil {
		respondDomainError(ctx, err, loanNotFoundStatus)
		return
	}

	ctx.JSON(http.StatusOK, nonNil(loans))
}

// DELETE /emprestimos/meus/:id
func (h *LoansHandler) DeleteMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	id, ok := pathID(ctx, loanNotFoundStatus, "Loan")
	if !ok {
		return
	}

	if err := h.svc.DeleteOwn(ctx.Request.Context(), userID, id); err != nil {
		respondDomainError(ctx, err, loanNotFoundStatus)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Loan deleted successfully", "", nil)
}

func nonNil(loans []loan.Loan) []loan.Loan {
	if loans == nil {
		return []loan.Loan{}
	}
	return loans
}
