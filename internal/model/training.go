package model

import (
	"time"

	"github.com/google/uuid"
)

// TrainingFolder groups training videos. Folder names are unique.
type TrainingFolder struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	VideoCount  int       `json:"videoCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TrainingVideo is an uploaded video stored on the local filesystem.
type TrainingVideo struct {
	ID          uuid.UUID `json:"id"`
	FolderID    uuid.UUID `json:"folderId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"-"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	MimeType    string    `json:"mimeType"`
	UploadedBy  uuid.UUID `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateFolderRequest is the payload for creating a training or schedule folder.
type CreateFolderRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}
