package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/proctor"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	ws "github.com/examhall/examhall-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// answerDraftTTL keeps abandoned drafts from living in Redis forever. Long
// enough to survive any plausible sitting.
const answerDraftTTL = 12 * time.Hour

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowlist permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ProctorHandler runs the proctored attempt stream: countdown ticks,
// violation accounting, answer-draft autosave and the submission trigger
// all ride one WebSocket connection per attempt.
type ProctorHandler struct {
	rdb               *redis.Client
	examService       *service.ExamService
	submissionService *service.SubmissionService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(
	rdb *redis.Client,
	examService *service.ExamService,
	submissionService *service.SubmissionService,
	log zerolog.Logger,
	allowedOrigins []string,
) *ProctorHandler {
	return &ProctorHandler{
		rdb:               rdb,
		examService:       examService,
		submissionService: submissionService,
		log:               log.With().Str("component", "proctor_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// attempt bundles the per-connection state shared between the read loop
// and the ticker goroutine.
type attempt struct {
	conn      *ws.Conn
	monitor   *proctor.Monitor
	exam      *model.Exam
	examID    uuid.UUID
	studentID uuid.UUID
	draftKey  string
	log       zerolog.Logger
}

// Stream godoc
// WS /ws/v1/student/exams/:id/proctor
// Upgrades to WebSocket and runs the attempt until submission or disconnect.
func (h *ProctorHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "exam not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	a := &attempt{
		conn:      ws.NewConn(raw),
		monitor:   proctor.NewMonitor(exam, time.Now()),
		exam:      exam,
		examID:    examID,
		studentID: claims.UserID,
		draftKey:  config.CacheKey.AnswerDraftKey(examID.String(), claims.UserID.String()),
		log: h.log.With().
			Str("student_id", claims.UserID.String()).
			Str("exam_id", examID.String()).
			Logger(),
	}
	defer a.conn.Close()

	a.log.Info().Msg("Student connected")

	a.monitor.Start()
	a.conn.WriteTyped(ws.StartedResponse{
		Event:     ws.EventStarted,
		Remaining: remainingSeconds(a.monitor),
	})

	// The ticker stops when the read loop returns.
	tickerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.runTicker(tickerCtx, a)

	h.readLoop(a)
}

func (h *ProctorHandler) readLoop(a *attempt) {
	for {
		var msg ws.RequestPayload
		if err := a.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				a.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(a, msg.Answers)
		case ws.ActionViolation:
			h.handleViolation(a, msg.Kind)
		case ws.ActionAck:
			a.monitor.Acknowledge()
			a.conn.WriteTyped(ws.SuccessResponse{Event: ws.EventSuccess, Status: "resumed"})
		case ws.ActionSubmit:
			h.handleSubmit(a, msg.Answers)
		case ws.ActionPing:
			a.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			a.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			a.conn.WriteError("unknown action: " + string(msg.Action))
		}

		if a.monitor.State() == proctor.StateSubmitted {
			return
		}
	}
}

// runTicker drives the countdown at one-second resolution and fires the
// auto-submission when the budget runs out.
func (h *ProctorHandler) runTicker(ctx context.Context, a *attempt) {
	if _, bounded := a.monitor.Remaining(); !bounded {
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := a.monitor.Tick()
			if t.Submit {
				h.autoSubmit(a)
				return
			}
			// A terminal state may be transient: a manual submission in
			// flight holds the monitor submitted and releases it again if
			// persistence fails, so the countdown must stay armed until
			// the read loop cancels the context.
			if t.State == proctor.StateSubmitted || t.State == proctor.StateAutoSubmitting {
				continue
			}
			a.conn.WriteTyped(ws.TickResponse{
				Event:     ws.EventTick,
				Remaining: remainingSeconds(a.monitor),
			})
		}
	}
}

// handleAutosave stores the full answer draft in Redis so a forced
// submission always grades the latest saved state.
func (h *ProctorHandler) handleAutosave(a *attempt, answers json.RawMessage) {
	if len(answers) == 0 {
		a.conn.WriteError("answers required")
		return
	}
	if h.rdb == nil {
		a.conn.WriteError("autosave unavailable")
		return
	}

	ctx := context.Background()
	if err := h.rdb.Set(ctx, a.draftKey, []byte(answers), answerDraftTTL).Err(); err != nil {
		a.log.Error().Err(err).Msg("Draft autosave failed")
		a.conn.WriteError("autosave failed")
		return
	}

	a.conn.WriteTyped(ws.SuccessResponse{Event: ws.EventSuccess, Status: "saved"})
}

// handleViolation counts the breach, queues it for persistence and either
// warns the student or forces submission at the limit.
func (h *ProctorHandler) handleViolation(a *attempt, kind string) {
	t := a.monitor.RecordViolation(model.ViolationKind(kind))

	h.queueViolation(a, kind, t.Violations)

	if t.Submit {
		h.autoSubmit(a)
		return
	}
	if t.Warn {
		a.conn.WriteTyped(ws.WarningResponse{
			Event:      ws.EventWarning,
			Violations: t.Violations,
			Remaining:  proctor.MaxViolations - t.Violations,
		})
	}
}

// queueViolation pushes the event to Redis; the violation worker batches
// the inserts. Persistence failure never affects the attempt.
func (h *ProctorHandler) queueViolation(a *attempt, kind string, count int) {
	payload, _ := json.Marshal(map[string]interface{}{
		"exam_id":    a.examID.String(),
		"student_id": a.studentID.String(),
		"kind":       kind,
		"count":      count,
		"timestamp":  time.Now().Unix(),
	})

	if h.rdb == nil {
		return
	}
	if err := h.rdb.RPush(context.Background(), config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		a.log.Error().Err(err).Msg("Failed to queue violation")
	}
}

// handleSubmit is the manual submission path. Inline answers take priority
// over the autosaved draft. The payload is validated before the monitor's
// terminal transition fires: a rejected submission leaves the attempt
// running so the student can correct and resubmit.
func (h *ProctorHandler) handleSubmit(a *attempt, answers json.RawMessage) {
	if len(answers) == 0 {
		answers = h.loadDraft(a)
	}
	if _, err := grading.ParseAnswer(a.exam.ExamType, answers); err != nil {
		a.log.Warn().Err(err).Msg("Submission rejected")
		a.conn.WriteErrorCode(submitRejectionCode(err), err.Error())
		return
	}

	t := a.monitor.Submit()
	if !t.Submit {
		a.conn.WriteError("attempt already submitted")
		return
	}
	h.grade(a, answers, false)
}

func submitRejectionCode(err error) string {
	if errors.Is(err, grading.ErrMissingCode) {
		return string(response.ErrMissingCode)
	}
	return string(response.ErrInvalidAnswerFormat)
}

// autoSubmit grades the autosaved draft after a forced termination. The
// monitor has already fired, so this runs at most once per attempt.
func (h *ProctorHandler) autoSubmit(a *attempt) {
	a.log.Info().Msg("Forced submission triggered")
	h.grade(a, h.loadDraft(a), true)
}

func (h *ProctorHandler) loadDraft(a *attempt) json.RawMessage {
	if h.rdb == nil {
		return nil
	}
	raw, err := h.rdb.Get(context.Background(), a.draftKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			a.log.Error().Err(err).Msg("Failed to load draft")
		}
		return nil
	}
	return raw
}

func (h *ProctorHandler) grade(a *attempt, answers json.RawMessage, auto bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := h.submissionService.SubmitRaw(ctx, a.examID, a.studentID, answers, auto)
	if err != nil {
		a.log.Error().Err(err).Bool("auto", auto).Msg("Grading failed")
		if auto {
			// The attempt is over regardless; keep it terminal.
			a.monitor.MarkSubmitted()
			a.conn.WriteErrorCode(string(response.ErrInternal), "grading failed")
			return
		}
		// Reopen the attempt so the student can retry the submission.
		a.monitor.Release()
		a.conn.WriteErrorCode(string(response.ErrInternal), "submission failed, please retry")
		return
	}

	a.monitor.MarkSubmitted()
	if h.rdb != nil {
		h.rdb.Del(ctx, a.draftKey)
	}

	a.conn.WriteTyped(ws.GradedResponse{
		Event: ws.EventGraded,
		Score: res.Score,
		Total: res.Total,
		Auto:  auto,
	})
}

func remainingSeconds(m *proctor.Monitor) int {
	remaining, bounded := m.Remaining()
	if !bounded {
		return -1
	}
	return int(remaining / time.Second)
}
