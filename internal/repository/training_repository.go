package repository

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrainingRepository handles training folders and videos.
type TrainingRepository struct {
	pool *pgxpool.Pool
}

// NewTrainingRepository creates a new TrainingRepository.
func NewTrainingRepository(pool *pgxpool.Pool) *TrainingRepository {
	return &TrainingRepository{pool: pool}
}

// ListFolders retrieves all folders newest first, with live video counts.
func (r *TrainingRepository) ListFolders(ctx context.Context) ([]model.TrainingFolder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT f.id, f.name, f.description, f.created_by, f.created_at,
		        COUNT(v.id)
		 FROM training_folders f
		 LEFT JOIN training_videos v ON v.folder_id = f.id
		 GROUP BY f.id
		 ORDER BY f.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TrainingFolder
	for rows.Next() {
		var f model.TrainingFolder
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.CreatedAt, &f.VideoCount); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFolder inserts a folder. Returns ErrDuplicate when the name is taken.
func (r *TrainingRepository) CreateFolder(ctx context.Context, f *model.TrainingFolder) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO training_folders (name, description, created_by)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id, created_at`,
		f.Name, f.Description, f.CreatedBy,
	).Scan(&f.ID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	return err
}

// GetFolder retrieves a folder by id.
func (r *TrainingRepository) GetFolder(ctx context.Context, id uuid.UUID) (*model.TrainingFolder, error) {
	f := &model.TrainingFolder{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_by, created_at
		 FROM training_folders WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// DeleteFolder removes a folder row. Video rows cascade at the database
// level; file cleanup is the service's concern.
func (r *TrainingRepository) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM training_folders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListVideos retrieves a folder's videos newest first.
func (r *TrainingRepository) ListVideos(ctx context.Context, folderID uuid.UUID) ([]model.TrainingVideo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, folder_id, title, description, file_path, file_name,
		        file_size, mime_type, uploaded_by, created_at
		 FROM training_videos
		 WHERE folder_id = $1
		 ORDER BY created_at DESC`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TrainingVideo
	for rows.Next() {
		var v model.TrainingVideo
		if err := rows.Scan(&v.ID, &v.FolderID, &v.Title, &v.Description, &v.FilePath,
			&v.FileName, &v.FileSize, &v.MimeType, &v.UploadedBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListVideoPaths returns the stored file paths for every video in a folder.
func (r *TrainingRepository) ListVideoPaths(ctx context.Context, folderID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT file_path FROM training_videos WHERE folder_id = $1`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// GetVideo retrieves a video by id.
func (r *TrainingRepository) GetVideo(ctx context.Context, id uuid.UUID) (*model.TrainingVideo, error) {
	v := &model.TrainingVideo{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, folder_id, title, description, file_path, file_name,
		        file_size, mime_type, uploaded_by, created_at
		 FROM training_videos WHERE id = $1`, id,
	).Scan(&v.ID, &v.FolderID, &v.Title, &v.Description, &v.FilePath,
		&v.FileName, &v.FileSize, &v.MimeType, &v.UploadedBy, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// CreateVideo inserts a video row.
func (r *TrainingRepository) CreateVideo(ctx context.Context, v *model.TrainingVideo) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO training_videos (folder_id, title, description, file_path,
		                              file_name, file_size, mime_type, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		v.FolderID, v.Title, v.Description, v.FilePath,
		v.FileName, v.FileSize, v.MimeType, v.UploadedBy,
	).Scan(&v.ID, &v.CreatedAt)
}

// DeleteVideo removes a video row.
func (r *TrainingRepository) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM training_videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
