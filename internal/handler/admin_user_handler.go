package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studika/gradebook-backend/internal/middleware"
	"github.com/studika/gradebook-backend/internal/model"
	"github.com/studika/gradebook-backend/internal/response"
	"github.com/studika/gradebook-backend/internal/service"
	"github.com/studika/gradebook-backend/internal/validator"
)

// AdminUserHandler handles staff account management endpoints.
type AdminUserHandler struct {
	principalService *service.PrincipalService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(principalService *service.PrincipalService) *AdminUserHandler {
	return &AdminUserHandler{principalService: principalService}
}

// List godoc
// GET /api/v1/admin/users
func (h *AdminUserHandler) List(c *gin.Context) {
	principals, err := h.principalService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": principals})
}

// Create godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) Create(c *gin.Context) {
	var req model.CreatePrincipalRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	principal, err := h.principalService.Create(c.Request.Context(), middleware.GetPrincipal(c),
		req.Username, req.Password, model.Role(req.Role), c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": principal})
}

// Deactivate godoc
// POST /api/v1/admin/users/:id/deactivate
// Disables the account and revokes all of its sessions immediately.
func (h *AdminUserHandler) Deactivate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.principalService.Deactivate(c.Request.Context(), middleware.GetPrincipal(c), id, c.ClientIP()); err != nil {
		if errors.Is(err, service.ErrPrincipalNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetPassword godoc
// POST /api/v1/admin/users/:id/reset-password
func (h *AdminUserHandler) ResetPassword(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.principalService.ResetPassword(c.Request.Context(), middleware.GetPrincipal(c), id, req.Password, c.ClientIP()); err != nil {
		if errors.Is(err, service.ErrPrincipalNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
