package handler

import (
	"errors"
	"net/http"

	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentPortalHandler serves the student-facing exam endpoints.
type StudentPortalHandler struct {
	examService *service.ExamService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService) *StudentPortalHandler {
	return &StudentPortalHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/student/exams
// Lists exams without their question documents.
func (h *StudentPortalHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Strip the question documents; the full payload is fetched per exam
	// when the attempt starts.
	summaries := make([]gin.H, 0, len(exams))
	for _, e := range exams {
		summaries = append(summaries, gin.H{
			"id":        e.ID,
			"title":     e.Title,
			"examType":  e.ExamType,
			"questions": len(e.Questions),
			"duration":  e.DurationMinutes,
			"startTime": e.StartTime,
			"endTime":   e.EndTime,
		})
	}

	response.Success(c, http.StatusOK, gin.H{"exams": summaries})
}

// GetExam godoc
// GET /api/v1/student/exams/:id
// Returns the exam payload with answer keys stripped.
func (h *StudentPortalHandler) GetExam(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.examService.StudentPayload(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": payload})
}
