package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/accounts"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/middlewares"
	"github.com/geocoder89/libraryhub/internal/security"
	"github.com/geocoder89/libraryhub/internal/utils"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed request. Client errors carry
// message; server errors carry errorMessage.
type APIError struct {
	Code         string      `json:"code"`
	Message      string      `json:"message,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	RequestID    string      `json:"requestId,omitempty"`
	Details      interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	body := APIError{
		Code:      code,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	}
	if status >= http.StatusInternalServerError {
		body.ErrorMessage = message
	} else {
		body.Message = message
	}
	ctx.AbortWithStatusJSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, status int, message string) {
	RespondError(ctx, status, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondMessage writes a success body: {"message": ..., key: value}.
func RespondMessage(ctx *gin.Context, status int, message string, key string, value interface{}) {
	body := gin.H{"message": message}
	if key != "" {
		body[key] = value
	}
	ctx.JSON(status, body)
}

// respondDomainError maps service sentinels to responses. notFoundStatus
// is the status used for missing records on the calling route family.
func respondDomainError(ctx *gin.Context, err error, notFoundStatus int) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, notFoundStatus, "User not found")
	case errors.Is(err, book.ErrNotFound):
		RespondNotFound(ctx, notFoundStatus, "Book not found")
	case errors.Is(err, loan.ErrNotFound):
		RespondNotFound(ctx, notFoundStatus, "Loan not found")
	case errors.Is(err, user.ErrEmailTaken):
		RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use", nil)
	case errors.Is(err, user.ErrAdminExists):
		RespondError(ctx, http.StatusBadRequest, "admin_exists", "An administrator already exists", nil)
	case errors.Is(err, book.ErrOnLoan):
		RespondError(ctx, http.StatusBadRequest, "book_on_loan", "Book has active loans", nil)
	case errors.Is(err, loan.ErrLimitExceeded):
		RespondError(ctx, http.StatusBadRequest, "loan_limit_exceeded", "User already holds the maximum number of loans", nil)
	case errors.Is(err, loan.ErrBookUnavailable):
		RespondError(ctx, http.StatusBadRequest, "book_unavailable", "Book is unavailable", nil)
	case errors.Is(err, security.ErrPasswordTooLong):
		RespondError(ctx, http.StatusBadRequest, "invalid_request", "senha must be at most 72 bytes", nil)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		RespondError(ctx, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
	case errors.Is(err, utils.ErrInvalidLimit), errors.Is(err, utils.ErrInvalidPage):
		RespondError(ctx, http.StatusBadRequest, "invalid_parameter", err.Error(), nil)
	default:
		RespondInternal(ctx, err.Error())
	}
}

// pathID returns the :id param when it is a well-formed id. Anything else
// cannot name a record and is answered as not found.
func pathID(ctx *gin.Context, notFoundStatus int, what string) (string, bool) {
	id := ctx.Param("id")
	if !utils.IsUUID(id) {
		RespondNotFound(ctx, notFoundStatus, what+" not found")
		return "", false
	}
	return id, true
}

// parsePage reads limite/pagina from the query string.
func parsePage(ctx *gin.Context) (utils.Page, bool) {
	page, err := utils.ParsePage(ctx.Query("limite"), ctx.Query("pagina"))
	if err != nil {
		RespondError(ctx, http.StatusBadRequest, "invalid_parameter", err.Error(), nil)
		return utils.Page{}, false
	}
	return page, true
}
