package handler

import (
	"errors"
	"net/http"

	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmissionHandler handles exam submission and results endpoints.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	resultService     *service.ResultService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService, resultService *service.ResultService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		resultService:     resultService,
	}
}

// Submit godoc
// POST /api/v1/student/submissions
// Grades the answers against the exam and stores the result.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrMissingField, fields)
		return
	}

	// Students submit only for themselves.
	if claims := middleware.GetClaims(c); claims != nil && claims.UserID.String() != req.StudentID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), &req, false)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
		case errors.Is(err, service.ErrInvalidStudentID):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		case errors.Is(err, grading.ErrMissingCode):
			response.Fail(c, http.StatusBadRequest, response.ErrMissingCode)
		case errors.Is(err, grading.ErrInvalidAnswerFormat):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidAnswerFormat)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// ListMyResults godoc
// GET /api/v1/student/results
func (h *SubmissionHandler) ListMyResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListByStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// ListStudentResults godoc
// GET /api/v1/admin/students/:id/results
func (h *SubmissionHandler) ListStudentResults(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.resultService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetResultDetail godoc
// GET /api/v1/admin/results/:id
// Returns one result with its exam document for review.
func (h *SubmissionHandler) GetResultDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.resultService.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": detail})
}
