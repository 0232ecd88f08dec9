package service

import (
	"context"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/google/uuid"
)

// ResultService exposes graded results for review.
type ResultService struct {
	repo *repository.ResultRepository
}

// NewResultService creates a new ResultService.
func NewResultService(repo *repository.ResultRepository) *ResultService {
	return &ResultService{repo: repo}
}

// ListByStudent returns a student's results newest first.
func (s *ResultService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ResultSummary, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// GetDetail returns one result with its exam document for review. The exam
// is nil when it has been deleted since submission.
func (s *ResultService) GetDetail(ctx context.Context, id uuid.UUID) (*model.ResultDetail, error) {
	return s.repo.GetDetail(ctx, id)
}
