package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type stubExamStore struct {
	exam *model.Exam
}

func (s *stubExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	if s.exam == nil || s.exam.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.exam, nil
}

type stubResultStore struct {
	created []*model.Result
}

func (s *stubResultStore) Create(_ context.Context, r *model.Result) error {
	r.ID = uuid.New()
	s.created = append(s.created, r)
	return nil
}

// asStudent injects the claims the JWT middleware would have set.
func asStudent(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{
			TokenType: service.TokenTypeStudent,
			UserID:    id,
		})
	}
}

func newSubmissionRouter(exam *model.Exam, studentID uuid.UUID) (*gin.Engine, *stubResultStore) {
	results := &stubResultStore{}
	engine := grading.NewEngine(nil, zerolog.Nop())
	svc := service.NewSubmissionService(&stubExamStore{exam: exam}, results, engine, zerolog.Nop())
	h := NewSubmissionHandler(svc, nil)

	r := gin.New()
	r.POST("/student/submissions", asStudent(studentID), h.Submit)
	return r, results
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Error == nil {
		t.Fatalf("expected error body, got %s", w.Body.String())
	}
	return body.Error.Code
}

func TestSubmitHappyPath(t *testing.T) {
	studentID := uuid.New()
	exam := &model.Exam{
		ID:       uuid.New(),
		ExamType: model.ExamTypeMCQ,
		Questions: []model.Question{
			{CorrectAnswer: 0},
			{CorrectAnswer: 1},
		},
	}
	r, results := newSubmissionRouter(exam, studentID)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    exam.ID.String(),
		"studentId": studentID.String(),
		"answers":   []int{0, 1},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data struct {
			Result model.SubmitResponse `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data.Result.Score != 2 || body.Data.Result.Total != 2 {
		t.Errorf("got %d/%d, want 2/2", body.Data.Result.Score, body.Data.Result.Total)
	}
	if len(results.created) != 1 {
		t.Errorf("persisted %d results", len(results.created))
	}
}

func TestSubmitMissingFields(t *testing.T) {
	studentID := uuid.New()
	r, _ := newSubmissionRouter(nil, studentID)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId": uuid.NewString(),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	if code := errCode(t, w); code != response.ErrMissingField {
		t.Errorf("code %s, want MISSING_FIELD", code)
	}
}

func TestSubmitForAnotherStudentForbidden(t *testing.T) {
	studentID := uuid.New()
	exam := &model.Exam{ID: uuid.New(), ExamType: model.ExamTypeMCQ}
	r, results := newSubmissionRouter(exam, studentID)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    exam.ID.String(),
		"studentId": uuid.NewString(),
		"answers":   []int{0},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d", w.Code)
	}
	if len(results.created) != 0 {
		t.Error("forbidden submission persisted")
	}
}

func TestSubmitUnknownExam404(t *testing.T) {
	studentID := uuid.New()
	r, _ := newSubmissionRouter(nil, studentID)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    uuid.NewString(),
		"studentId": studentID.String(),
		"answers":   []int{0},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if code := errCode(t, w); code != response.ErrExamNotFound {
		t.Errorf("code %s, want EXAM_NOT_FOUND", code)
	}
}

func TestSubmitMalformedStudentIDRejected(t *testing.T) {
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 0}},
	}
	results := &stubResultStore{}
	engine := grading.NewEngine(nil, zerolog.Nop())
	svc := service.NewSubmissionService(&stubExamStore{exam: exam}, results, engine, zerolog.Nop())
	h := NewSubmissionHandler(svc, nil)

	// No claims middleware: the self-check is skipped, so the id reaches
	// the service unverified.
	r := gin.New()
	r.POST("/student/submissions", h.Submit)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    exam.ID.String(),
		"studentId": "not-a-uuid",
		"answers":   []int{0},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if code := errCode(t, w); code != response.ErrInvalidID {
		t.Errorf("code %s, want INVALID_ID", code)
	}
	if len(results.created) != 0 {
		t.Error("rejected submission persisted")
	}
}

func TestSubmitEmptyCodeRejected(t *testing.T) {
	studentID := uuid.New()
	exam := &model.Exam{
		ID:       uuid.New(),
		ExamType: model.ExamTypeCoding,
		Questions: []model.Question{
			{TestCases: []model.TestCase{{Input: "1", Expected: "1"}}},
		},
	}
	r, _ := newSubmissionRouter(exam, studentID)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    exam.ID.String(),
		"studentId": studentID.String(),
		"answers":   gin.H{"code": "   ", "language": "python"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if code := errCode(t, w); code != response.ErrMissingCode {
		t.Errorf("code %s, want MISSING_CODE", code)
	}
}

func TestSubmitMalformedAnswers(t *testing.T) {
	studentID := uuid.New()
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 0}},
	}
	r, _ := newSubmissionRouter(exam, studentID)

	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    exam.ID.String(),
		"studentId": studentID.String(),
		"answers":   "not a document",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if code := errCode(t, w); code != response.ErrInvalidAnswerFormat {
		t.Errorf("code %s, want INVALID_ANSWER_FORMAT", code)
	}
}

func TestSubmitMapFormAnswers(t *testing.T) {
	studentID := uuid.New()
	questions := make([]model.Question, 11)
	for i := range questions {
		questions[i].CorrectAnswer = 1
	}
	exam := &model.Exam{ID: uuid.New(), ExamType: model.ExamTypeMCQ, Questions: questions}
	r, _ := newSubmissionRouter(exam, studentID)

	answers := gin.H{}
	for i := 0; i < 11; i++ {
		answers[fmt.Sprint(i)] = 1
	}
	w := doJSON(r, http.MethodPost, "/student/submissions", gin.H{
		"examId":    exam.ID.String(),
		"studentId": studentID.String(),
		"answers":   answers,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data struct {
			Result model.SubmitResponse `json:"result"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Result.Score != 11 {
		t.Errorf("score %d, want 11 (map keys must sort numerically)", body.Data.Result.Score)
	}
}
