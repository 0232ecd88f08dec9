package handler

import (
	"errors"
	"net/http"

	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ExecHandler handles interactive code runs from the coding exam screen.
type ExecHandler struct {
	execService *service.ExecService
}

// NewExecHandler creates a new ExecHandler.
func NewExecHandler(execService *service.ExecService) *ExecHandler {
	return &ExecHandler{execService: execService}
}

// Run godoc
// POST /api/v1/student/execute
// Runs code with the given stdin. Unlike grading, a gateway outage is
// surfaced to the caller since there is nothing to fall back to.
func (h *ExecHandler) Run(c *gin.Context) {
	var req service.RunRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.execService.Run(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrUnsupportedLanguage):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedLang)
		case errors.Is(err, service.ErrGatewayUnavailable):
			response.Fail(c, http.StatusBadGateway, response.ErrGatewayUnavailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"run": result})
}

// Languages godoc
// GET /api/v1/student/execute/languages
func (h *ExecHandler) Languages(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"languages": grading.SupportedLanguages()})
}
