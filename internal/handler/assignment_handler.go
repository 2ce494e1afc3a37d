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

// AssignmentHandler handles teacher-to-subject assignment endpoints.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// List godoc
// GET /api/v1/admin/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignmentService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// ListMine godoc
// GET /api/v1/assignments/mine
// Returns the calling teacher's own subject assignments.
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignments, err := h.assignmentService.ListByTeacher(c.Request.Context(), p.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// Create godoc
// POST /api/v1/admin/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), middleware.GetPrincipal(c), req.TeacherID, req.SubjectID, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateAssignment):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrTeacherNotFound), errors.Is(err, service.ErrSubjectNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotATeacher):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// Delete godoc
// DELETE /api/v1/admin/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.assignmentService.Unassign(c.Request.Context(), middleware.GetPrincipal(c), id, c.ClientIP()); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
