package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidStudentID rejects a submission whose student id is not a UUID.
var ErrInvalidStudentID = errors.New("invalid student id")

// ExamStore is the subset of the exam repository the submission flow needs.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// ResultStore persists graded results.
type ResultStore interface {
	Create(ctx context.Context, result *model.Result) error
}

// SubmissionService grades an answer payload against its exam and persists
// the result.
type SubmissionService struct {
	exams   ExamStore
	results ResultStore
	engine  *grading.Engine
	log     zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(exams ExamStore, results ResultStore, engine *grading.Engine, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		exams:   exams,
		results: results,
		engine:  engine,
		log:     log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit grades and stores a submission. When auto is true the submission
// was forced by the proctor (timer expiry or violation limit) and an empty
// coding answer is accepted as a zero-score result instead of rejected.
func (s *SubmissionService) Submit(ctx context.Context, req *model.SubmitRequest, auto bool) (*model.SubmitResponse, error) {
	examID, err := uuid.Parse(req.ExamID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad exam id", repository.ErrNotFound)
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, ErrInvalidStudentID
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	answer, err := grading.ParseAnswer(exam.ExamType, req.Answers)
	if err != nil {
		if !auto {
			return nil, err
		}
		// Forced submission with nothing usable written: record a zero
		// instead of rejecting, the attempt is over either way.
		answer = emptyAnswer(exam)
	}

	outcome, err := s.engine.Grade(ctx, exam, answer)
	if err != nil {
		return nil, err
	}

	result := &model.Result{
		ExamID:         examID,
		StudentID:      studentID,
		ExamType:       exam.ExamType,
		Score:          outcome.Score,
		TotalQuestions: outcome.TotalQuestions,
		MCQAnswers:     outcome.MCQAnswers,
		TheoryAnswers:  outcome.TheoryAnswers,
		Coding:         outcome.Coding,
		AutoSubmit:     auto,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("student_id", studentID.String()).
		Int("score", outcome.Score).
		Int("total", outcome.TotalQuestions).
		Bool("auto", auto).
		Msg("submission graded")

	return &model.SubmitResponse{
		Score:    outcome.Score,
		Total:    outcome.TotalQuestions,
		ResultID: result.ID,
	}, nil
}

// emptyAnswer builds the zero-value answer for an exam type.
func emptyAnswer(exam *model.Exam) grading.Answer {
	switch exam.ExamType {
	case model.ExamTypeCoding:
		lang := "javascript"
		if len(exam.AllowedLanguages) > 0 {
			lang = exam.AllowedLanguages[0]
		}
		return grading.CodingAnswer{Code: "", Language: lang}
	case model.ExamTypeTheory:
		return grading.TheoryAnswer{}
	default:
		return grading.MCQAnswer{}
	}
}

// SubmitRaw is a convenience for the proctor stream, which carries the
// answer draft as raw JSON.
func (s *SubmissionService) SubmitRaw(ctx context.Context, examID, studentID uuid.UUID, answers json.RawMessage, auto bool) (*model.SubmitResponse, error) {
	return s.Submit(ctx, &model.SubmitRequest{
		ExamID:    examID.String(),
		StudentID: studentID.String(),
		Answers:   answers,
	}, auto)
}
