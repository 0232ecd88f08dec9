package handler

import (
	"errors"
	"net/http"

	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TrainingHandler handles training-video folders and streaming.
type TrainingHandler struct {
	trainingService *service.TrainingService
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(trainingService *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// ListFolders godoc
// GET /api/v1/training/folders
func (h *TrainingHandler) ListFolders(c *gin.Context) {
	folders, err := h.trainingService.ListFolders(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"folders": folders})
}

// CreateFolder godoc
// POST /api/v1/admin/training/folders
func (h *TrainingHandler) CreateFolder(c *gin.Context) {
	var req model.CreateFolderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	folder, err := h.trainingService.CreateFolder(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"folder": folder})
}

// DeleteFolder godoc
// DELETE /api/v1/admin/training/folders/:id
func (h *TrainingHandler) DeleteFolder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.trainingService.DeleteFolder(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListVideos godoc
// GET /api/v1/training/folders/:id/videos
func (h *TrainingHandler) ListVideos(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	videos, err := h.trainingService.ListVideos(c.Request.Context(), folderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"videos": videos})
}

// Upload godoc
// POST /api/v1/admin/training/folders/:id/videos (multipart)
func (h *TrainingHandler) Upload(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	video, err := h.trainingService.Upload(
		c.Request.Context(), folderID,
		c.PostForm("title"), c.PostForm("description"),
		fh, claims.UserID,
	)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		case errors.Is(err, service.ErrUnsupportedFile):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"video": video})
}

// Stream godoc
// GET /api/v1/training/videos/:id/stream
// Serves the video file. http.ServeFile handles Range requests, so seeking
// works in browser players.
func (h *TrainingHandler) Stream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	video, err := h.trainingService.GetVideo(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Type", video.MimeType)
	http.ServeFile(c.Writer, c.Request, video.FilePath)
}

// DeleteVideo godoc
// DELETE /api/v1/admin/training/videos/:id
func (h *TrainingHandler) DeleteVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.trainingService.DeleteVideo(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
