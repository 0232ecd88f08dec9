package repository

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ExamRepository handles exam data access. Questions and allowed languages
// live in JSONB columns; pgx maps them to the model slices directly.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, exam_type, title, questions, allowed_languages,
	start_time, end_time, duration_minutes, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.ExamType, &e.Title, &e.Questions, &e.AllowedLanguages,
		&e.StartTime, &e.EndTime, &e.DurationMinutes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// List retrieves all exams, newest first.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (exam_type, title, questions, allowed_languages, start_time, end_time, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.ExamType, e.Title, e.Questions, e.AllowedLanguages,
		e.StartTime, e.EndTime, e.DurationMinutes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update replaces every mutable column of an exam. Merge semantics are the
// service's concern; the repository writes the full document.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, questions = $2, allowed_languages = $3,
		     start_time = $4, end_time = $5, duration_minutes = $6,
		     updated_at = NOW()
		 WHERE id = $7`,
		e.Title, e.Questions, e.AllowedLanguages,
		e.StartTime, e.EndTime, e.DurationMinutes, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an exam. Results referencing it keep their denormalized
// exam type, so listings survive the delete.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
