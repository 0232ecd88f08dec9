package repository

import (
	"context"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProctorRepository reads persisted proctoring violations for admin review.
// Writes go through the violation worker's bulk insert, not this type.
type ProctorRepository struct {
	pool *pgxpool.Pool
}

// NewProctorRepository creates a new ProctorRepository.
func NewProctorRepository(pool *pgxpool.Pool) *ProctorRepository {
	return &ProctorRepository{pool: pool}
}

// ListByExam retrieves an exam's violations newest first.
func (r *ProctorRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ProctorEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, kind, violation_count, recorded_at
		 FROM proctor_events
		 WHERE exam_id = $1
		 ORDER BY recorded_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProctorEvent
	for rows.Next() {
		var e model.ProctorEvent
		if err := rows.Scan(&e.ID, &e.ExamID, &e.StudentID, &e.Kind, &e.Count, &e.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
