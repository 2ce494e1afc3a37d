package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/studika/gradebook-backend/internal/middleware"
	"github.com/studika/gradebook-backend/internal/model"
	"github.com/studika/gradebook-backend/internal/response"
	"github.com/studika/gradebook-backend/internal/service"
	"github.com/studika/gradebook-backend/internal/validator"
)

// GradeHandler handles mark recording and grade aggregation endpoints.
type GradeHandler struct {
	gradeService      *service.GradeService
	permissionService *service.PermissionService
	auditService      *service.AuditService
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(
	gradeService *service.GradeService,
	permissionService *service.PermissionService,
	auditService *service.AuditService,
) *GradeHandler {
	return &GradeHandler{
		gradeService:      gradeService,
		permissionService: permissionService,
		auditService:      auditService,
	}
}

// RecordMark godoc
// PUT /api/v1/students/:student_id/subjects/:subject_id/mark
// Records or overwrites the mark for a (student, subject) pair. Teachers
// need both an assignment for the subject and an existing mark row for the
// student; a denied attempt is audited before rejection.
func (h *GradeHandler) RecordMark(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	subjectID, err := strconv.Atoi(c.Param("subject_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var comps model.MarkComponents
	if fields := validator.Bind(c, &comps); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	allowed, err := h.permissionService.CanEditStudentMark(c.Request.Context(), p, studentID, subjectID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !allowed {
		h.auditService.Record(c.Request.Context(), p, model.ActionPermissionDenied, "marks",
			fmt.Sprintf("%d:%d", studentID, subjectID), nil, comps, c.ClientIP())
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
		return
	}

	mark, err := h.gradeService.RecordMark(c.Request.Context(), p, studentID, subjectID, comps, c.ClientIP())
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, ve.Fields)
		case errors.Is(err, service.ErrStudentNotFound), errors.Is(err, service.ErrSubjectNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"mark": mark})
}

// GetMark godoc
// GET /api/v1/students/:student_id/subjects/:subject_id/mark
func (h *GradeHandler) GetMark(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	subjectID, err := strconv.Atoi(c.Param("subject_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	mark, err := h.gradeService.GetMark(c.Request.Context(), studentID, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"mark": mark})
}

// YearGrade godoc
// GET /api/v1/students/:student_id/grades/year/:year
// Returns the sum of weighted grades across all subjects of one program year.
func (h *GradeHandler) YearGrade(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	grade, err := h.gradeService.YearGrade(c.Request.Context(), studentID, year)
	if err != nil {
		if errors.Is(err, service.ErrInvalidYear) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_id": studentID,
		"year":       year,
		"grade":      grade,
	})
}

// GraduationGrade godoc
// GET /api/v1/students/:student_id/grades/graduation
// Returns the sum of both year grades.
func (h *GradeHandler) GraduationGrade(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	grade, err := h.gradeService.GraduationGrade(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_id":       studentID,
		"graduation_grade": grade,
	})
}

// Report godoc
// GET /api/v1/students/:student_id/report
// Returns the full grade report: all marks, year totals, graduation grade.
func (h *GradeHandler) Report(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.gradeService.Report(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}
