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

// ScheduleService manages schedule-document folders and their files.
type ScheduleService struct {
	repo *repository.ScheduleRepository
	cfg  *config.Config
	log  zerolog.Logger
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(repo *repository.ScheduleRepository, cfg *config.Config, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		repo: repo,
		cfg:  cfg,
		log:  log.With().Str("component", "schedule_service").Logger(),
	}
}

// ListFolders returns all folders with their document counts.
func (s *ScheduleService) ListFolders(ctx context.Context) ([]model.ScheduleFolder, error) {
	return s.repo.ListFolders(ctx)
}

// CreateFolder creates a named folder. Names are unique.
func (s *ScheduleService) CreateFolder(ctx context.Context, req *model.CreateFolderRequest, createdBy uuid.UUID) (*model.ScheduleFolder, error) {
	folder := &model.ScheduleFolder{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes a folder, its document rows and their stored files.
func (s *ScheduleService) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.ListDocumentPaths(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFolder(ctx, id); err != nil {
		return err
	}
	removeFiles(paths)
	return nil
}

// ListDocuments returns the documents in a folder.
func (s *ScheduleService) ListDocuments(ctx context.Context, folderID uuid.UUID) ([]model.ScheduleDocument, error) {
	if _, err := s.repo.GetFolder(ctx, folderID); err != nil {
		return nil, err
	}
	return s.repo.ListDocuments(ctx, folderID)
}

// Upload validates and stores a document file, then records it in the folder.
func (s *ScheduleService) Upload(ctx context.Context, folderID uuid.UUID, title, description string, fh *multipart.FileHeader, uploadedBy uuid.UUID) (*model.ScheduleDocument, error) {
	if _, err := s.repo.GetFolder(ctx, folderID); err != nil {
		return nil, err
	}
	if fh.Size > s.cfg.MaxDocUploadBytes {
		return nil, ErrFileTooLarge
	}

	mimeType := fh.Header.Get("Content-Type")

	path, err := saveUpload(fh, s.cfg.DocumentUploadDir)
	if err != nil {
		return nil, err
	}

	doc := &model.ScheduleDocument{
		FolderID:    folderID,
		Title:       title,
		Description: description,
		FilePath:    path,
		FileName:    fh.Filename,
		FileSize:    fh.Size,
		MimeType:    mimeType,
		FileType:    fileTypeFromMIME(mimeType, fh.Filename),
		UploadedBy:  uploadedBy,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		removeFiles([]string{path})
		return nil, err
	}

	s.log.Info().
		Str("folder_id", folderID.String()).
		Str("document_id", doc.ID.String()).
		Str("file_type", string(doc.FileType)).
		Msg("document uploaded")
	return doc, nil
}

// Download returns a document for sending to the client and bumps its
// download counter.
func (s *ScheduleService) Download(ctx context.Context, id uuid.UUID) (*model.ScheduleDocument, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementDownloads(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("document_id", id.String()).Msg("failed to bump download counter")
	}
	return doc, nil
}

// DeleteDocument removes a document row and its stored file.
func (s *ScheduleService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	removeFiles([]string{doc.FilePath})
	return nil
}

// fileTypeFromMIME maps a MIME type (with a filename-extension fallback) to
// the coarse category shown in document listings.
func fileTypeFromMIME(mimeType, filename string) model.DocumentFileType {
	mt := strings.ToLower(mimeType)
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(mt, "spreadsheet"), strings.Contains(mt, "excel"),
		strings.HasSuffix(name, ".xls"), strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".csv"):
		return model.FileTypeExcel
	case strings.Contains(mt, "wordprocessing"), strings.Contains(mt, "msword"),
		strings.HasSuffix(name, ".doc"), strings.HasSuffix(name, ".docx"):
		return model.FileTypeWord
	case strings.Contains(mt, "presentation"), strings.Contains(mt, "powerpoint"),
		strings.HasSuffix(name, ".ppt"), strings.HasSuffix(name, ".pptx"):
		return model.FileTypePowerPoint
	case strings.Contains(mt, "pdf"), strings.HasSuffix(name, ".pdf"):
		return model.FileTypePDF
	default:
		return model.FileTypeOther
	}
}
