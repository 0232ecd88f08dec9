package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentFileType is the coarse category of a schedule document, derived
// from its MIME type at upload time.
type DocumentFileType string

const (
	FileTypeExcel      DocumentFileType = "excel"
	FileTypeWord       DocumentFileType = "word"
	FileTypePowerPoint DocumentFileType = "powerpoint"
	FileTypePDF        DocumentFileType = "pdf"
	FileTypeOther      DocumentFileType = "other"
)

// ScheduleFolder groups schedule documents. Folder names are unique.
type ScheduleFolder struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CreatedBy     uuid.UUID `json:"createdBy"`
	DocumentCount int       `json:"documentCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ScheduleDocument is an uploaded document stored on the local filesystem.
type ScheduleDocument struct {
	ID          uuid.UUID        `json:"id"`
	FolderID    uuid.UUID        `json:"folderId"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	FilePath    string           `json:"-"`
	FileName    string           `json:"fileName"`
	FileSize    int64            `json:"fileSize"`
	MimeType    string           `json:"mimeType"`
	FileType    DocumentFileType `json:"fileType"`
	UploadedBy  uuid.UUID        `json:"uploadedBy"`
	Downloads   int              `json:"downloads"`
	CreatedAt   time.Time        `json:"createdAt"`
}
