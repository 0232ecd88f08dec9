package repository

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles grading-outcome persistence. Results are
// insert-only: there is no update or delete path.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a new result. Duplicate (exam, student) pairs are
// permitted; each submission creates its own row.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (exam_id, student_id, exam_type, score, total_questions,
		                      mcq_answers, theory_answers, coding, auto_submit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		res.ExamID, res.StudentID, res.ExamType, res.Score, res.TotalQuestions,
		res.MCQAnswers, res.TheoryAnswers, res.Coding, res.AutoSubmit,
	).Scan(&res.ID, &res.CreatedAt)
}

// ListByStudent retrieves a student's results newest first, with the exam
// title populated from the exams table. Results whose exam was deleted
// keep their denormalized type and show an empty title.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ResultSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.exam_id, r.student_id, r.exam_type, r.score, r.total_questions,
		        r.mcq_answers, r.theory_answers, r.coding, r.auto_submit, r.created_at,
		        COALESCE(e.title, '')
		 FROM results r
		 LEFT JOIN exams e ON e.id = r.exam_id
		 WHERE r.student_id = $1
		 ORDER BY r.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ResultSummary
	for rows.Next() {
		var s model.ResultSummary
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.ExamType, &s.Score, &s.TotalQuestions,
			&s.MCQAnswers, &s.TheoryAnswers, &s.Coding, &s.AutoSubmit, &s.CreatedAt, &s.ExamTitle); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetDetail retrieves a single result with its exam populated, including
// the full question documents for admin review. Exam is nil when the exam
// has since been deleted.
func (r *ResultRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ResultDetail, error) {
	var d model.ResultDetail

	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, student_id, exam_type, score, total_questions,
		        mcq_answers, theory_answers, coding, auto_submit, created_at
		 FROM results WHERE id = $1`, id,
	).Scan(&d.ID, &d.ExamID, &d.StudentID, &d.ExamType, &d.Score, &d.TotalQuestions,
		&d.MCQAnswers, &d.TheoryAnswers, &d.Coding, &d.AutoSubmit, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	exam, err := scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, d.ExamID))
	switch {
	case err == nil:
		d.Exam = exam
	case errors.Is(err, ErrNotFound):
		// Exam deleted after submission; the result stands on its own.
	default:
		return nil, err
	}
	return &d, nil
}
