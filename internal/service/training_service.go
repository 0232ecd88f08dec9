package service

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TrainingService manages training-video folders and their files.
type TrainingService struct {
	repo *repository.TrainingRepository
	cfg  *config.Config
	log  zerolog.Logger
}

// NewTrainingService creates a new TrainingService.
func NewTrainingService(repo *repository.TrainingRepository, cfg *config.Config, log zerolog.Logger) *TrainingService {
	return &TrainingService{
		repo: repo,
		cfg:  cfg,
		log:  log.With().Str("component", "training_service").Logger(),
	}
}

// ListFolders returns all folders with their video counts.
func (s *TrainingService) ListFolders(ctx context.Context) ([]model.TrainingFolder, error) {
	return s.repo.ListFolders(ctx)
}

// CreateFolder creates a named folder. Names are unique.
func (s *TrainingService) CreateFolder(ctx context.Context, req *model.CreateFolderRequest, createdBy uuid.UUID) (*model.TrainingFolder, error) {
	folder := &model.TrainingFolder{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes a folder, its video rows and their stored files.
func (s *TrainingService) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.ListVideoPaths(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFolder(ctx, id); err != nil {
		return err
	}
	removeFiles(paths)
	return nil
}

// ListVideos returns the videos in a folder.
func (s *TrainingService) ListVideos(ctx context.Context, folderID uuid.UUID) ([]model.TrainingVideo, error) {
	if _, err := s.repo.GetFolder(ctx, folderID); err != nil {
		return nil, err
	}
	return s.repo.ListVideos(ctx, folderID)
}

// GetVideo returns one video's metadata including its storage path.
func (s *TrainingService) GetVideo(ctx context.Context, id uuid.UUID) (*model.TrainingVideo, error) {
	return s.repo.GetVideo(ctx, id)
}

// Upload validates and stores a video file, then records it in the folder.
func (s *TrainingService) Upload(ctx context.Context, folderID uuid.UUID, title, description string, fh *multipart.FileHeader, uploadedBy uuid.UUID) (*model.TrainingVideo, error) {
	if _, err := s.repo.GetFolder(ctx, folderID); err != nil {
		return nil, err
	}
	if fh.Size > s.cfg.MaxVideoUploadBytes {
		return nil, ErrFileTooLarge
	}

	mimeType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "video/") {
		return nil, ErrUnsupportedFile
	}

	path, err := saveUpload(fh, s.cfg.VideoUploadDir)
	if err != nil {
		return nil, err
	}

	video := &model.TrainingVideo{
		FolderID:    folderID,
		Title:       title,
		Description: description,
		FilePath:    path,
		FileName:    fh.Filename,
		FileSize:    fh.Size,
		MimeType:    mimeType,
		UploadedBy:  uploadedBy,
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		removeFiles([]string{path})
		return nil, err
	}

	s.log.Info().
		Str("folder_id", folderID.String()).
		Str("video_id", video.ID.String()).
		Int64("size", fh.Size).
		Msg("video uploaded")
	return video, nil
}

// DeleteVideo removes a video row and its stored file.
func (s *TrainingService) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteVideo(ctx, id); err != nil {
		return err
	}
	removeFiles([]string{video.FilePath})
	return nil
}
