package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/accounts"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/middlewares"
	"github.com/geocoder89/libraryhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, req user.CredentialsRequest) (user.User, error)
	ProvisionAdmin(ctx context.Context, req user.CredentialsRequest) (user.User, error)
	Bootstrap(ctx context.Context) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (string, user.User, error)
	Update(ctx context.Context, id string, req user.CredentialsRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page utils.Page) ([]user.User, error)
}

type UsersHandler struct {
	svc AccountService
}

func NewUsersHandler(svc AccountService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// POST /usuarios
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.CredentialsRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.Register(ctx.Request.Context(), req)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "User registered successfully", "user", u)
}

// POST /usuarios/login
func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	token, _, err := h.svc.Login(ctx.Request.Context(), req)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Login successful", "token", token)
}

// GET /usuarios
func (h *UsersHandler) List(ctx *gin.Context) {
	page, ok := parsePage(ctx)
	if !ok {
		return
	}

	users, err := h.svc.List(ctx.Request.Context(), page)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}
	if users == nil {
		users = []user.User{}
	}

	ctx.JSON(http.StatusOK, users)
}

// POST /usuarios/admin
func (h *UsersHandler) CreateAdmin(ctx *gin.Context) {
	var req user.CredentialsRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.ProvisionAdmin(ctx.Request.Context(), req)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Administrator created successfully", "user", u)
}

// PUT /usuarios/admin/:id
func (h *UsersHandler) UpdateByAdmin(ctx *gin.Context) {
	id, ok := pathID(ctx, http.StatusNotFound, "User")
	if !ok {
		return
	}

	h.update(ctx, id)
}

// PUT /usuarios updates the caller's own account.
func (h *UsersHandler) UpdateSelf(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	h.update(ctx, id)
}

func (h *UsersHandler) update(ctx *gin.Context, id string) {
	var req user.CredentialsRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.svc.Update(ctx.Request.Context(), id, req)
	if err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User updated successfully", "user", u)
}

// DELETE /usuarios/admin/:id
func (h *UsersHandler) DeleteByAdmin(ctx *gin.Context) {
	id, ok := pathID(ctx, http.StatusNotFound, "User")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully", "", nil)
}

// GET /install creates the configured first administrator, once.
func (h *UsersHandler) Install(ctx *gin.Context) {
	u, err := h.svc.Bootstrap(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, accounts.ErrBootstrapNotConfigured) {
			RespondInternal(ctx, "Administrator credentials are not configured")
			return
		}
		respondDomainError(ctx, err, http.StatusNotFound)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Administrator installed successfully", "user", u)
}
