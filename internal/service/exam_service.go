package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrExamLocked is returned when an edit targets an exam whose start time
// has already passed.
var ErrExamLocked = errors.New("exam already started")

// ExamAuthoringStore is the exam repository surface the authoring service
// needs.
type ExamAuthoringStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	List(ctx context.Context) ([]model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExamService owns exam authoring and the student-facing payload. The Redis
// client is optional; without it every payload read hits the database.
type ExamService struct {
	repo ExamAuthoringStore
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(repo ExamAuthoringStore, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "exam_service").Logger(),
	}
}

// Create stores a new exam.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Title:            req.Title,
		ExamType:         model.ExamType(req.ExamType),
		Questions:        req.Questions,
		AllowedLanguages: req.AllowedLanguages,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		DurationMinutes:  req.DurationMinutes,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Get returns a single exam with answer keys. Admin use only.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all exams, newest first.
func (s *ExamService) List(ctx context.Context) ([]model.Exam, error) {
	return s.repo.List(ctx)
}

// Update applies a partial edit to an exam. Fields absent from the request
// keep their stored values. Editing is refused once the exam's start time
// has passed.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if exam.Locked(time.Now()) {
		return nil, ErrExamLocked
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Questions != nil {
		exam.Questions = req.Questions
	}
	if req.AllowedLanguages != nil {
		exam.AllowedLanguages = req.AllowedLanguages
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.StartTime != nil {
		exam.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = req.EndTime
	}

	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, err
	}
	s.invalidatePayload(ctx, id)
	return exam, nil
}

// Delete removes an exam. Deletion is allowed regardless of schedule so an
// admin can always pull a broken exam.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidatePayload(ctx, id)
	return nil
}

// StudentPayload returns the exam stripped of answer keys, suitable for
// delivery to a student client. The payload is cached in Redis since every
// participant of a sitting requests the same document.
func (s *ExamService) StudentPayload(ctx context.Context, id uuid.UUID) (*model.ExamPayload, error) {
	cacheKey := config.CacheKey.ExamPayloadKey(id.String())

	if raw, err := s.cacheGet(ctx, cacheKey); err == nil {
		var payload model.ExamPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return &payload, nil
		}
		s.log.Warn().Str("exam_id", id.String()).Msg("corrupt cached payload, refetching")
	}

	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := buildStudentPayload(exam)

	if raw, err := json.Marshal(payload); err == nil && s.rdb != nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, 5*time.Minute).Err(); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache exam payload")
		}
	}

	return payload, nil
}

func (s *ExamService) cacheGet(ctx context.Context, key string) (string, error) {
	if s.rdb == nil {
		return "", redis.Nil
	}
	return s.rdb.Get(ctx, key).Result()
}

func (s *ExamService) invalidatePayload(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.ExamPayloadKey(id.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("failed to invalidate payload cache")
	}
}

func buildStudentPayload(exam *model.Exam) *model.ExamPayload {
	questions := make([]model.StudentQuestion, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		sq := model.StudentQuestion{
			Prompt:      q.Prompt,
			Options:     q.Options,
			StarterCode: q.StarterCode,
		}
		// Test case inputs double as worked examples on the coding
		// screen; expected outputs stay server-side.
		for _, tc := range q.TestCases {
			sq.SampleInputs = append(sq.SampleInputs, tc.Input)
		}
		questions = append(questions, sq)
	}

	return &model.ExamPayload{
		ExamID:           exam.ID,
		Title:            exam.Title,
		ExamType:         exam.ExamType,
		Questions:        questions,
		AllowedLanguages: exam.AllowedLanguages,
		StartTime:        exam.StartTime,
		EndTime:          exam.EndTime,
		DurationMinutes:  exam.DurationMinutes,
	}
}
