package repository

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository handles schedule folders and documents.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// ListFolders retrieves all folders newest first, with live document counts.
func (r *ScheduleRepository) ListFolders(ctx context.Context) ([]model.ScheduleFolder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT f.id, f.name, f.description, f.created_by, f.created_at,
		        COUNT(d.id)
		 FROM schedule_folders f
		 LEFT JOIN schedule_documents d ON d.folder_id = f.id
		 GROUP BY f.id
		 ORDER BY f.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleFolder
	for rows.Next() {
		var f model.ScheduleFolder
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.CreatedAt, &f.DocumentCount); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFolder inserts a folder. Returns ErrDuplicate when the name is taken.
func (r *ScheduleRepository) CreateFolder(ctx context.Context, f *model.ScheduleFolder) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO schedule_folders (name, description, created_by)
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
func (r *ScheduleRepository) GetFolder(ctx context.Context, id uuid.UUID) (*model.ScheduleFolder, error) {
	f := &model.ScheduleFolder{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_by, created_at
		 FROM schedule_folders WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// DeleteFolder removes a folder row; document rows cascade.
func (r *ScheduleRepository) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_folders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDocuments retrieves a folder's documents newest first.
func (r *ScheduleRepository) ListDocuments(ctx context.Context, folderID uuid.UUID) ([]model.ScheduleDocument, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, folder_id, title, description, file_path, file_name,
		        file_size, mime_type, file_type, uploaded_by, downloads, created_at
		 FROM schedule_documents
		 WHERE folder_id = $1
		 ORDER BY created_at DESC`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleDocument
	for rows.Next() {
		var d model.ScheduleDocument
		if err := rows.Scan(&d.ID, &d.FolderID, &d.Title, &d.Description, &d.FilePath,
			&d.FileName, &d.FileSize, &d.MimeType, &d.FileType, &d.UploadedBy,
			&d.Downloads, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListDocumentPaths returns the stored file paths for every document in a folder.
func (r *ScheduleRepository) ListDocumentPaths(ctx context.Context, folderID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT file_path FROM schedule_documents WHERE folder_id = $1`, folderID)
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

// GetDocument retrieves a document by id.
func (r *ScheduleRepository) GetDocument(ctx context.Context, id uuid.UUID) (*model.ScheduleDocument, error) {
	d := &model.ScheduleDocument{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, folder_id, title, description, file_path, file_name,
		        file_size, mime_type, file_type, uploaded_by, downloads, created_at
		 FROM schedule_documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.FolderID, &d.Title, &d.Description, &d.FilePath,
		&d.FileName, &d.FileSize, &d.MimeType, &d.FileType, &d.UploadedBy,
		&d.Downloads, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// CreateDocument inserts a document row.
func (r *ScheduleRepository) CreateDocument(ctx context.Context, d *model.ScheduleDocument) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO schedule_documents (folder_id, title, description, file_path,
		                                 file_name, file_size, mime_type, file_type, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		d.FolderID, d.Title, d.Description, d.FilePath,
		d.FileName, d.FileSize, d.MimeType, d.FileType, d.UploadedBy,
	).Scan(&d.ID, &d.CreatedAt)
}

// IncrementDownloads bumps a document's download counter.
func (r *ScheduleRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE schedule_documents SET downloads = downloads + 1 WHERE id = $1`, id)
	return err
}

// DeleteDocument removes a document row.
func (r *ScheduleRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
