package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeExamRepo struct {
	exams   map[uuid.UUID]*model.Exam
	updated *model.Exam
	deleted []uuid.UUID
}

func newFakeExamRepo(exams ...*model.Exam) *fakeExamRepo {
	r := &fakeExamRepo{exams: map[uuid.UUID]*model.Exam{}}
	for _, e := range exams {
		r.exams[e.ID] = e
	}
	return r
}

func (r *fakeExamRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := r.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExamRepo) List(_ context.Context) ([]model.Exam, error) {
	out := make([]model.Exam, 0, len(r.exams))
	for _, e := range r.exams {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeExamRepo) Create(_ context.Context, e *model.Exam) error {
	e.ID = uuid.New()
	r.exams[e.ID] = e
	return nil
}

func (r *fakeExamRepo) Update(_ context.Context, e *model.Exam) error {
	r.updated = e
	r.exams[e.ID] = e
	return nil
}

func (r *fakeExamRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.exams, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func newExamFixture(exams ...*model.Exam) (*ExamService, *fakeExamRepo) {
	repo := newFakeExamRepo(exams...)
	return NewExamService(repo, nil, zerolog.Nop()), repo
}

func strPtr(s string) *string { return &s }

func minPtr(i int) *int { return &i }

func TestExamCreateMapsRequest(t *testing.T) {
	svc, _ := newExamFixture()
	exam, err := svc.Create(context.Background(), &model.CreateExamRequest{
		Title:            "Algorithms Final",
		ExamType:         "coding",
		Questions:        []model.Question{{Prompt: "reverse a string"}},
		AllowedLanguages: []string{"python", "javascript"},
		DurationMinutes:  minPtr(90),
	})
	if err != nil {
		t.Fatal(err)
	}
	if exam.ID == uuid.Nil {
		t.Error("id not assigned")
	}
	if exam.ExamType != model.ExamTypeCoding {
		t.Errorf("type %s, want coding", exam.ExamType)
	}
	if len(exam.AllowedLanguages) != 2 || *exam.DurationMinutes != 90 {
		t.Errorf("fields not mapped: %+v", exam)
	}
}

func TestExamUpdateMergesOmittedFields(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	orig := &model.Exam{
		ID:              uuid.New(),
		Title:           "Midterm",
		ExamType:        model.ExamTypeMCQ,
		Questions:       []model.Question{{Prompt: "q1", CorrectAnswer: 1}},
		StartTime:       &start,
		DurationMinutes: minPtr(45),
	}
	svc, repo := newExamFixture(orig)

	updated, err := svc.Update(context.Background(), orig.ID, &model.UpdateExamRequest{
		Title: strPtr("Midterm (retake)"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Midterm (retake)" {
		t.Errorf("title %q", updated.Title)
	}
	if len(updated.Questions) != 1 || *updated.DurationMinutes != 45 {
		t.Error("omitted fields were not preserved")
	}
	if repo.updated == nil {
		t.Error("update never reached the store")
	}
}

func TestExamUpdateRefusedOnceStarted(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	orig := &model.Exam{
		ID:        uuid.New(),
		Title:     "Live exam",
		ExamType:  model.ExamTypeMCQ,
		StartTime: &start,
	}
	svc, repo := newExamFixture(orig)

	_, err := svc.Update(context.Background(), orig.ID, &model.UpdateExamRequest{Title: strPtr("edited")})
	if !errors.Is(err, ErrExamLocked) {
		t.Errorf("got %v, want ErrExamLocked", err)
	}
	if repo.updated != nil {
		t.Error("locked exam must not be written")
	}
}

func TestExamUpdateUnknownID(t *testing.T) {
	svc, _ := newExamFixture()
	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateExamRequest{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestExamDeleteIgnoresSchedule(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	orig := &model.Exam{ID: uuid.New(), StartTime: &start}
	svc, repo := newExamFixture(orig)

	if err := svc.Delete(context.Background(), orig.ID); err != nil {
		t.Fatal(err)
	}
	if len(repo.deleted) != 1 {
		t.Error("delete never reached the store")
	}
}

func TestStudentPayloadStripsAnswerKeys(t *testing.T) {
	exam := &model.Exam{
		ID:       uuid.New(),
		Title:    "Coding round",
		ExamType: model.ExamTypeCoding,
		Questions: []model.Question{
			{
				Prompt:        "double it",
				CorrectAnswer: 2,
				StarterCode:   "function solve(x) {}",
				TestCases: []model.TestCase{
					{Input: "1", Expected: "2"},
					{Input: "3", Expected: "6"},
				},
			},
		},
		AllowedLanguages: []string{"javascript"},
	}
	svc, _ := newExamFixture(exam)

	payload, err := svc.StudentPayload(context.Background(), exam.ID)
	if err != nil {
		t.Fatal(err)
	}
	if payload.ExamID != exam.ID || payload.ExamType != model.ExamTypeCoding {
		t.Errorf("payload header: %+v", payload)
	}
	q := payload.Questions[0]
	if q.Prompt != "double it" || q.StarterCode == "" {
		t.Errorf("question: %+v", q)
	}
	if len(q.SampleInputs) != 2 || q.SampleInputs[0] != "1" {
		t.Errorf("sample inputs: %v", q.SampleInputs)
	}
}

func TestStudentPayloadOmitsMCQCorrectAnswers(t *testing.T) {
	exam := &model.Exam{
		ID:       uuid.New(),
		ExamType: model.ExamTypeMCQ,
		Questions: []model.Question{
			{Prompt: "pick one", Options: []string{"a", "b"}, CorrectAnswer: 1},
		},
	}
	svc, _ := newExamFixture(exam)

	payload, err := svc.StudentPayload(context.Background(), exam.ID)
	if err != nil {
		t.Fatal(err)
	}
	q := payload.Questions[0]
	if len(q.Options) != 2 {
		t.Errorf("options: %v", q.Options)
	}
	// StudentQuestion has no correct-answer field at all; assert the
	// serialized form stays clean of it too.
	if q.SampleInputs != nil {
		t.Errorf("mcq question gained sample inputs: %v", q.SampleInputs)
	}
}
