package handler

import (
	"errors"
	"net/http"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamHandler handles admin exam authoring endpoints.
type ExamHandler struct {
	examService *service.ExamService
	proctorRepo *repository.ProctorRepository
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, proctorRepo *repository.ProctorRepository) *ExamHandler {
	return &ExamHandler{examService: examService, proctorRepo: proctorRepo}
}

// Create godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) Create(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// List godoc
// GET /api/v1/admin/exams
func (h *ExamHandler) List(c *gin.Context) {
	exams, err := h.examService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Get godoc
// GET /api/v1/admin/exams/:id
// Returns the full exam document including answer keys.
func (h *ExamHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Update godoc
// PUT /api/v1/admin/exams/:id
// Applies a partial edit. Refused once the exam's start time has passed.
func (h *ExamHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	exam, err := h.examService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
		case errors.Is(err, service.ErrExamLocked):
			response.Fail(c, http.StatusBadRequest, response.ErrExamLocked)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Delete godoc
// DELETE /api/v1/admin/exams/:id
// Deletion has no schedule guard; an admin can always remove an exam.
func (h *ExamHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListViolations godoc
// GET /api/v1/admin/exams/:id/violations
// Returns the proctoring events recorded during an exam.
func (h *ExamHandler) ListViolations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	events, err := h.proctorRepo.ListByExam(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"violations": events})
}
