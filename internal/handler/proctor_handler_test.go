package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	ws "github.com/examhall/examhall-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// flakyResultStore persists like stubResultStore but can be told to fail.
// Mutex-guarded because the stream handler calls it from the server
// goroutine.
type flakyResultStore struct {
	mu      sync.Mutex
	created []*model.Result
	err     error
}

func (s *flakyResultStore) Create(_ context.Context, r *model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	r.ID = uuid.New()
	s.created = append(s.created, r)
	return nil
}

func (s *flakyResultStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *flakyResultStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

func newProctorServer(t *testing.T, exam *model.Exam, studentID uuid.UUID) (*httptest.Server, *flakyResultStore) {
	t.Helper()

	results := &flakyResultStore{}
	engine := grading.NewEngine(nil, zerolog.Nop())
	subSvc := service.NewSubmissionService(&stubExamStore{exam: exam}, results, engine, zerolog.Nop())
	examSvc := service.NewExamService(newStubAuthoringStore(exam), nil, zerolog.Nop())
	h := NewProctorHandler(nil, examSvc, subSvc, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/student/exams/:id/proctor", asStudent(studentID), h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, results
}

func dialProctor(t *testing.T, srv *httptest.Server, examID uuid.UUID) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/student/exams/" + examID.String() + "/proctor"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// First frame is always the started event.
	if msg := readEvent(t, conn); msg["event"] != string(ws.EventStarted) {
		t.Fatalf("first event %v, want started", msg["event"])
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return msg
}

func sendSubmit(t *testing.T, conn *websocket.Conn, answers string) {
	t.Helper()

	raw := `{"action": "submit", "answers": ` + answers + `}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestStreamEmptyCodeSubmitKeepsAttemptAlive(t *testing.T) {
	exam := &model.Exam{
		ID:               uuid.New(),
		ExamType:         model.ExamTypeCoding,
		AllowedLanguages: []string{"javascript"},
		Questions:        []model.Question{{Prompt: "solve"}},
	}
	studentID := uuid.New()
	srv, results := newProctorServer(t, exam, studentID)
	conn := dialProctor(t, srv, exam.ID)

	sendSubmit(t, conn, `{"code": "   "}`)

	msg := readEvent(t, conn)
	if msg["event"] != string(ws.EventError) {
		t.Fatalf("event %v, want error", msg["event"])
	}
	if msg["code"] != string(response.ErrMissingCode) {
		t.Errorf("code %v, want %s", msg["code"], response.ErrMissingCode)
	}
	if results.count() != 0 {
		t.Fatalf("rejected submission persisted %d results", results.count())
	}

	// The attempt must still accept a corrected submission.
	sendSubmit(t, conn, `{"code": "function solve(x) { return x }", "language": "javascript"}`)

	msg = readEvent(t, conn)
	if msg["event"] != string(ws.EventGraded) {
		t.Fatalf("event %v, want graded", msg["event"])
	}
	if msg["auto"] != false {
		t.Errorf("auto %v, want false", msg["auto"])
	}
	if results.count() != 1 {
		t.Errorf("persisted %d results, want 1", results.count())
	}
}

func TestStreamSubmitRetriesAfterStorageFailure(t *testing.T) {
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 1}, {CorrectAnswer: 0}},
	}
	studentID := uuid.New()
	srv, results := newProctorServer(t, exam, studentID)
	results.setErr(errors.New("connection refused"))
	conn := dialProctor(t, srv, exam.ID)

	sendSubmit(t, conn, `[1, 0]`)

	msg := readEvent(t, conn)
	if msg["event"] != string(ws.EventError) {
		t.Fatalf("event %v, want error", msg["event"])
	}
	if results.count() != 0 {
		t.Fatalf("failed persist recorded %d results", results.count())
	}

	results.setErr(nil)
	sendSubmit(t, conn, `[1, 0]`)

	msg = readEvent(t, conn)
	if msg["event"] != string(ws.EventGraded) {
		t.Fatalf("event %v, want graded", msg["event"])
	}
	if msg["score"] != float64(2) {
		t.Errorf("score %v, want 2", msg["score"])
	}
	if results.count() != 1 {
		t.Errorf("persisted %d results, want 1", results.count())
	}
}

func TestStreamClosesAfterGrading(t *testing.T) {
	exam := &model.Exam{
		ID:        uuid.New(),
		ExamType:  model.ExamTypeMCQ,
		Questions: []model.Question{{CorrectAnswer: 0}},
	}
	studentID := uuid.New()
	srv, results := newProctorServer(t, exam, studentID)
	conn := dialProctor(t, srv, exam.ID)

	sendSubmit(t, conn, `[0]`)

	if msg := readEvent(t, conn); msg["event"] != string(ws.EventGraded) {
		t.Fatalf("event %v, want graded", msg["event"])
	}

	// The stream is done after a successful submission; nothing else can
	// be submitted on it.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var discard map[string]interface{}
	if err := conn.ReadJSON(&discard); err == nil {
		t.Fatalf("read after grading succeeded with %v, want closed stream", discard)
	}
	if results.count() != 1 {
		t.Errorf("persisted %d results, want 1", results.count())
	}
}
