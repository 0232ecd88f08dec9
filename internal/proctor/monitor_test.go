package proctor

import (
	"testing"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
)

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func TestBudgetPrefersDuration(t *testing.T) {
	now := time.Now()
	exam := &model.Exam{
		DurationMinutes: intPtr(30),
		StartTime:       timePtr(now),
		EndTime:         timePtr(now.Add(2 * time.Hour)),
	}
	m := NewMonitor(exam, now)
	rem, ok := m.Remaining()
	if !ok {
		t.Fatal("budget should be bounded")
	}
	if rem != 30*time.Minute {
		t.Errorf("remaining %v, want 30m", rem)
	}
}

func TestBudgetFallsBackToWindowEnd(t *testing.T) {
	now := time.Now()
	exam := &model.Exam{
		StartTime: timePtr(now.Add(-10 * time.Minute)),
		EndTime:   timePtr(now.Add(20 * time.Minute)),
	}
	m := NewMonitor(exam, now)
	rem, ok := m.Remaining()
	if !ok {
		t.Fatal("budget should be bounded")
	}
	if rem != 20*time.Minute {
		t.Errorf("remaining %v, want 20m", rem)
	}
}

func TestBudgetUnboundedWithoutDurationOrWindow(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	if _, ok := m.Remaining(); ok {
		t.Error("budget should be unbounded")
	}
}

func TestTickCountsDownToAutoSubmit(t *testing.T) {
	exam := &model.Exam{DurationMinutes: intPtr(1)}
	m := NewMonitor(exam, time.Now())
	m.Start()

	var submit *Transition
	for i := 0; i < 60; i++ {
		tr := m.Tick()
		if tr.Submit {
			submit = &tr
			break
		}
	}
	if submit == nil {
		t.Fatal("countdown never armed submission")
	}
	if !submit.Auto {
		t.Error("timer submission should be flagged auto")
	}
	if submit.State != StateAutoSubmitting {
		t.Errorf("state %s, want auto_submitting", submit.State)
	}

	// Further ticks are inert.
	if tr := m.Tick(); tr.Submit {
		t.Error("submission fired twice")
	}
}

func TestTickUnboundedNeverSubmits(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	m.Start()
	for i := 0; i < 1000; i++ {
		if tr := m.Tick(); tr.Submit {
			t.Fatal("unbounded attempt must not auto-submit")
		}
	}
}

func TestViolationsWarnBelowThreshold(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	m.Start()

	for i := 1; i < MaxViolations; i++ {
		tr := m.RecordViolation(model.ViolationFullscreenExit)
		if !tr.Warn {
			t.Errorf("violation %d: expected warning", i)
		}
		if tr.Submit {
			t.Errorf("violation %d: submitted early", i)
		}
		if tr.Violations != i {
			t.Errorf("violation %d: count %d", i, tr.Violations)
		}
		if m.State() != StateWarned {
			t.Errorf("violation %d: state %s, want warned", i, m.State())
		}
		m.Acknowledge()
		if m.State() != StateRunning {
			t.Errorf("violation %d: acknowledge did not resume", i)
		}
	}
}

func TestFinalViolationSubmitsWithoutWarning(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	m.Start()
	for i := 1; i < MaxViolations; i++ {
		m.RecordViolation(model.ViolationTabHidden)
		m.Acknowledge()
	}

	tr := m.RecordViolation(model.ViolationTabHidden)
	if !tr.Submit || !tr.Auto {
		t.Errorf("threshold violation: %+v, want Submit+Auto", tr)
	}
	if tr.Warn {
		t.Error("threshold violation should skip the warning")
	}

	// Violations after the terminal transition are ignored.
	after := m.RecordViolation(model.ViolationTabHidden)
	if after.Submit || after.Violations != MaxViolations {
		t.Errorf("post-terminal violation: %+v", after)
	}
}

func TestManualSubmitFiresOnce(t *testing.T) {
	m := NewMonitor(&model.Exam{DurationMinutes: intPtr(10)}, time.Now())
	m.Start()

	first := m.Submit()
	if !first.Submit || first.Auto {
		t.Errorf("first submit: %+v, want manual Submit", first)
	}
	if second := m.Submit(); second.Submit {
		t.Error("second submit fired again")
	}
	if tr := m.Tick(); tr.Submit {
		t.Error("tick fired after manual submit")
	}
}

func TestTimerAndViolationRaceFiresOnce(t *testing.T) {
	exam := &model.Exam{DurationMinutes: intPtr(1)}
	m := NewMonitor(exam, time.Now())
	m.Start()
	for i := 1; i < MaxViolations; i++ {
		m.RecordViolation(model.ViolationFullscreenExit)
		m.Acknowledge()
	}

	type result struct{ tr Transition }
	ch := make(chan result, 2)
	go func() {
		var tr Transition
		for i := 0; i < 60; i++ {
			tr = m.Tick()
			if tr.Submit {
				break
			}
		}
		ch <- result{tr}
	}()
	go func() {
		ch <- result{m.RecordViolation(model.ViolationTabHidden)}
	}()

	fired := 0
	for i := 0; i < 2; i++ {
		if r := <-ch; r.tr.Submit {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("submission fired %d times, want exactly 1", fired)
	}
}

func TestReleaseReopensManualSubmit(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	m.Start()

	if t1 := m.Submit(); !t1.Submit {
		t.Fatal("first submit must fire")
	}
	m.Release()

	if m.State() != StateRunning {
		t.Errorf("state %s, want running after release", m.State())
	}
	if t2 := m.Submit(); !t2.Submit {
		t.Error("submit must fire again after release")
	}
}

func TestReleaseIgnoresAutoSubmission(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	m.Start()
	for i := 0; i < MaxViolations; i++ {
		m.Acknowledge()
		m.RecordViolation(model.ViolationTabHidden)
	}
	m.Release()

	if m.State() != StateAutoSubmitting {
		t.Errorf("state %s, want auto_submitting", m.State())
	}
	if t2 := m.Submit(); t2.Submit {
		t.Error("release must not rearm a forced submission")
	}
}

func TestMarkSubmittedTerminates(t *testing.T) {
	m := NewMonitor(&model.Exam{}, time.Now())
	m.Start()
	m.RecordViolation(model.ViolationTabHidden)
	for m.Violations() < MaxViolations {
		m.Acknowledge()
		m.RecordViolation(model.ViolationTabHidden)
	}
	m.MarkSubmitted()
	if m.State() != StateSubmitted {
		t.Errorf("state %s, want submitted", m.State())
	}
}
