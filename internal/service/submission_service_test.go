package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeExamStore struct {
	exam *model.Exam
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	if f.exam == nil || f.exam.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.exam, nil
}

type fakeResultStore struct {
	created []*model.Result
	err     error
}

func (f *fakeResultStore) Create(_ context.Context, r *model.Result) error {
	if f.err != nil {
		return f.err
	}
	r.ID = uuid.New()
	f.created = append(f.created, r)
	return nil
}

func newSubmissionFixture(exam *model.Exam) (*SubmissionService, *fakeResultStore) {
	results := &fakeResultStore{}
	engine := grading.NewEngine(nil, zerolog.Nop())
	svc := NewSubmissionService(&fakeExamStore{exam: exam}, results, engine, zerolog.Nop())
	return svc, results
}

func TestSubmitGradesMCQAndPersists(t *testing.T) {
	exam := &model.Exam{
		ID:       uuid.New(),
		ExamType: model.ExamTypeMCQ,
		Questions: []model.Question{
			{CorrectAnswer: 1},
			{CorrectAnswer: 0},
			{CorrectAnswer: 2},
		},
	}
	svc, results := newSubmissionFixture(exam)
	studentID := uuid.New()

	resp, err := svc.Submit(context.Background(), &model.SubmitRequest{
		ExamID:    exam.ID.String(),
		StudentID: studentID.String(),
		Answers:   json.RawMessage(`[1, 0, 0]`),
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Score != 2 || resp.Total != 3 {
		t.Errorf("got %d/%d, want 2/3", resp.Score, resp.Total)
	}
	if resp.ResultID == uuid.Nil {
		t.Error("response missing result id")
	}

	if len(results.created) != 1 {
		t.Fatalf("persisted %d results, want 1", len(results.created))
	}
	r := results.created[0]
	if r.StudentID != studentID || r.ExamType != model.ExamTypeMCQ || r.AutoSubmit {
		t.Errorf("persisted result: %+v", r)
	}
	if len(r.MCQAnswers) != 3 {
		t.Errorf("answers not stored: %v", r.MCQAnswers)
	}
}

func TestSubmitUnknownExam(t *testing.T) {
	svc, _ := newSubmissionFixture(nil)
	_, err := svc.Submit(context.Background(), &model.SubmitRequest{
		ExamID:    uuid.NewString(),
		StudentID: uuid.NewString(),
		Answers:   json.RawMessage(`[]`),
	}, false)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSubmitMalformedStudentIDRejected(t *testing.T) {
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 0}},
	}
	svc, results := newSubmissionFixture(exam)

	_, err := svc.Submit(context.Background(), &model.SubmitRequest{
		ExamID:    exam.ID.String(),
		StudentID: "not-a-uuid",
		Answers:   json.RawMessage(`[0]`),
	}, false)
	if !errors.Is(err, ErrInvalidStudentID) {
		t.Errorf("got %v, want ErrInvalidStudentID", err)
	}
	if len(results.created) != 0 {
		t.Error("rejected submission must not persist")
	}
}

func TestSubmitManualEmptyCodingRejected(t *testing.T) {
	exam := &model.Exam{
		ID:       uuid.New(),
		ExamType: model.ExamTypeCoding,
		Questions: []model.Question{
			{TestCases: []model.TestCase{{Input: "1", Expected: "1"}}},
		},
	}
	svc, results := newSubmissionFixture(exam)

	_, err := svc.Submit(context.Background(), &model.SubmitRequest{
		ExamID:    exam.ID.String(),
		StudentID: uuid.NewString(),
		Answers:   json.RawMessage(`{"code": "  "}`),
	}, false)
	if !errors.Is(err, grading.ErrMissingCode) {
		t.Errorf("got %v, want ErrMissingCode", err)
	}
	if len(results.created) != 0 {
		t.Error("rejected submission must not persist")
	}
}

func TestSubmitAutoEmptyCodingRecordsZero(t *testing.T) {
	exam := &model.Exam{
		ID:               uuid.New(),
		ExamType:         model.ExamTypeCoding,
		AllowedLanguages: []string{"python"},
		Questions: []model.Question{
			{TestCases: []model.TestCase{{Input: "1", Expected: "1"}, {Input: "2", Expected: "2"}}},
		},
	}
	svc, results := newSubmissionFixture(exam)
	studentID := uuid.New()

	resp, err := svc.SubmitRaw(context.Background(), exam.ID, studentID, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Score != 0 || resp.Total != 2 {
		t.Errorf("got %d/%d, want 0/2", resp.Score, resp.Total)
	}

	if len(results.created) != 1 {
		t.Fatalf("persisted %d results, want 1", len(results.created))
	}
	r := results.created[0]
	if !r.AutoSubmit {
		t.Error("forced submission not flagged")
	}
	if r.Coding == nil || r.Coding.Language != "python" || r.Coding.Code != "" {
		t.Errorf("coding payload: %+v", r.Coding)
	}
}

func TestSubmitAutoMalformedAnswersRecordsZero(t *testing.T) {
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 0}},
	}
	svc, results := newSubmissionFixture(exam)

	resp, err := svc.SubmitRaw(context.Background(), exam.ID, uuid.New(), json.RawMessage(`"garbage"`), true)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Score != 0 {
		t.Errorf("score %d, want 0", resp.Score)
	}
	if len(results.created) != 1 || !results.created[0].AutoSubmit {
		t.Errorf("persisted: %+v", results.created)
	}
}

func TestSubmitPersistFailureSurfaces(t *testing.T) {
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 0}},
	}
	results := &fakeResultStore{err: errors.New("db down")}
	engine := grading.NewEngine(nil, zerolog.Nop())
	svc := NewSubmissionService(&fakeExamStore{exam: exam}, results, engine, zerolog.Nop())

	_, err := svc.Submit(context.Background(), &model.SubmitRequest{
		ExamID:    exam.ID.String(),
		StudentID: uuid.NewString(),
		Answers:   json.RawMessage(`[0]`),
	}, false)
	if err == nil {
		t.Fatal("expected persistence error")
	}
}
