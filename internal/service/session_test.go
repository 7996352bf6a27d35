package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
	"github.com/yousafkhamza/devops-mcq-bot/internal/storage"
)

type fakeBank struct {
	questions []entities.Question
	err       error
}

func (f *fakeBank) Fetch(_ context.Context) ([]entities.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type recordingObserver struct {
	mu        sync.Mutex
	presented int
	ticks     int
	dangers   int
	timedOut  int
	finished  chan *entities.Report
	exited    chan *entities.Report
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		finished: make(chan *entities.Report, 1),
		exited:   make(chan *entities.Report, 1),
	}
}

func (o *recordingObserver) QuestionPresented(int, int, entities.Question, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.presented++
}

func (o *recordingObserver) TimerTicked(int, TimerLevel) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ticks++
}

func (o *recordingObserver) DangerSignaled(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dangers++
}

func (o *recordingObserver) QuestionTimedOut(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.timedOut++
}

func (o *recordingObserver) Finished(r *entities.Report) { o.finished <- r }
func (o *recordingObserver) Exited(r *entities.Report)   { o.exited <- r }

func (o *recordingObserver) tickCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ticks
}

func testPool(n int) []entities.Question {
	pool := make([]entities.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, entities.Question{
			Text:         "question",
			Options:      []string{"alpha", "beta", "gamma", "delta"},
			CorrectIndex: i % 4,
		})
	}
	return pool
}

func newTestSession(t *testing.T, pool []entities.Question, cfg SessionConfig, observer Observer) *Session {
	t.Helper()

	if cfg.QuestionTime == 0 {
		cfg.QuestionTime = 120 * time.Second
	}
	if cfg.NegativeMark == 0 {
		cfg.NegativeMark = 0.25
	}
	if cfg.WarningThreshold == 0 {
		cfg.WarningThreshold = 30 * time.Second
	}
	if cfg.DangerThreshold == 0 {
		cfg.DangerThreshold = 10 * time.Second
	}

	kv := storage.NewMemoryKV()
	return NewSession(
		cfg,
		&fakeBank{questions: pool},
		NewShuffler(kv, 10),
		NewRateLimiter(kv, 100),
		NewGuard(GuardConfig{BlockContextMenu: true}),
		observer,
	)
}

func TestSessionScoringScenario(t *testing.T) {
	s := newTestSession(t, testPool(4), SessionConfig{}, nil)

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := s.TotalQuestions(); got != 2 {
		t.Fatalf("expected 2 questions, got %d", got)
	}

	// First question answered correctly.
	q, ok := s.CurrentQuestion()
	if !ok {
		t.Fatal("no current question")
	}
	if err := s.SelectOption(q.CorrectIndex); err != nil {
		t.Fatalf("select option: %v", err)
	}
	if err := s.SubmitAnswer(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := len(s.Responses()); got != s.Position() {
		t.Fatalf("responses/position mismatch: %d != %d", got, s.Position())
	}

	// Second question answered wrong.
	q, ok = s.CurrentQuestion()
	if !ok {
		t.Fatal("no current question")
	}
	wrong := (q.CorrectIndex + 1) % len(q.Options)
	if err := s.SelectOption(wrong); err != nil {
		t.Fatalf("select option: %v", err)
	}
	if err := s.SubmitAnswer(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got := s.Phase(); got != entities.PhaseFinished {
		t.Fatalf("expected finished, got %s", got)
	}
	if got := s.Score(); got != 0.75 {
		t.Fatalf("expected score 0.75, got %v", got)
	}

	report, err := s.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Percent != 37.5 {
		t.Fatalf("expected 37.5%%, got %v", report.Percent)
	}
}

func TestSessionZeroCountFinishesImmediately(t *testing.T) {
	observer := newRecordingObserver()
	s := newTestSession(t, testPool(4), SessionConfig{}, observer)

	if err := s.EnterRules(0); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if got := s.Phase(); got != entities.PhaseFinished {
		t.Fatalf("expected finished, got %s", got)
	}

	report := <-observer.finished
	if report.Percent != 0 {
		t.Fatalf("expected 0%% for empty quiz, got %v", report.Percent)
	}
}

func TestSessionPercentNeverNegative(t *testing.T) {
	s := newTestSession(t, testPool(4), SessionConfig{NegativeMark: 5}, nil)

	if err := s.EnterRules(4); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	for s.Phase() == entities.PhaseRunning {
		q, ok := s.CurrentQuestion()
		if !ok {
			break
		}
		wrong := (q.CorrectIndex + 1) % len(q.Options)
		if err := s.SelectOption(wrong); err != nil {
			t.Fatalf("select option: %v", err)
		}
		if err := s.SubmitAnswer(); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	if got := s.Score(); got >= 0 {
		t.Fatalf("expected deeply negative score, got %v", got)
	}

	report, err := s.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Percent != 0 {
		t.Fatalf("expected clamped 0%%, got %v", report.Percent)
	}
}

func TestSessionSkipDoesNotChangeScore(t *testing.T) {
	s := newTestSession(t, testPool(4), SessionConfig{}, nil)

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A tentative choice is discarded by skip.
	if err := s.SelectOption(0); err != nil {
		t.Fatalf("select option: %v", err)
	}
	if err := s.SkipAnswer(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if err := s.SubmitAnswer(); err != nil { // no choice made: unanswered
		t.Fatalf("submit: %v", err)
	}

	if got := s.Score(); got != 0 {
		t.Fatalf("expected zero score, got %v", got)
	}

	responses := s.Responses()
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	for i, r := range responses {
		if r.Kind != entities.ResponseSkipped {
			t.Fatalf("response %d: expected skipped, got %s", i, r.Kind)
		}
	}
}

func TestSessionTimeoutIsIdempotentWithSubmit(t *testing.T) {
	s := newTestSession(t, testPool(4), SessionConfig{}, nil)

	if err := s.EnterRules(1); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The timeout lands first; the quiz has only one question, so it ends.
	s.handleTimeout(s.timerGen)

	if got := s.Phase(); got != entities.PhaseFinished {
		t.Fatalf("expected finished, got %s", got)
	}
	responses := s.Responses()
	if len(responses) != 1 || responses[0].Kind != entities.ResponseTimedOut {
		t.Fatalf("expected a single timed-out response, got %+v", responses)
	}

	// A last-instant submit racing the timeout must not record twice.
	if err := s.SubmitAnswer(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	if got := len(s.Responses()); got != 1 {
		t.Fatalf("expected responses unchanged, got %d", got)
	}
	if got := s.Score(); got != 0 {
		t.Fatalf("timeout must not change score, got %v", got)
	}
}

func TestSessionStaleTimerCallbacksIgnored(t *testing.T) {
	s := newTestSession(t, testPool(4), SessionConfig{}, nil)

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	staleGen := s.timerGen
	if err := s.SubmitAnswer(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// A timeout from the previous question's cancelled timer is a no-op.
	s.handleTimeout(staleGen)

	if got := len(s.Responses()); got != 1 {
		t.Fatalf("expected 1 response, got %d", got)
	}
	if got := s.Phase(); got != entities.PhaseRunning {
		t.Fatalf("expected still running, got %s", got)
	}
}

func TestSessionAutoAdvanceOnRealTimeout(t *testing.T) {
	observer := newRecordingObserver()
	s := newTestSession(t, testPool(4), SessionConfig{QuestionTime: 3 * time.Second}, observer)
	s.timer.interval = time.Millisecond

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	var report *entities.Report
	select {
	case report = <-observer.finished:
	case <-time.After(2 * time.Second):
		t.Fatal("quiz did not finish on timeouts")
	}

	if len(report.Items) != 2 {
		t.Fatalf("expected 2 report items, got %d", len(report.Items))
	}
	for i, item := range report.Items {
		if item.Response.Kind != entities.ResponseTimedOut {
			t.Fatalf("item %d: expected timed-out, got %s", i, item.Response.Kind)
		}
	}
	if report.Score != 0 {
		t.Fatalf("timeouts must not be penalized, got score %v", report.Score)
	}

	// The timer must be stopped after finishing: no further ticks.
	time.Sleep(10 * time.Millisecond)
	before := observer.tickCount()
	time.Sleep(20 * time.Millisecond)
	if after := observer.tickCount(); after != before {
		t.Fatalf("timer still ticking after finish: %d -> %d", before, after)
	}
}

func TestSessionRateLimitDeniesStart(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := NewSession(
		SessionConfig{QuestionTime: 120 * time.Second, NegativeMark: 0.25},
		&fakeBank{questions: testPool(4)},
		NewShuffler(kv, 10),
		NewRateLimiter(kv, 0),
		NewGuard(GuardConfig{}),
		nil,
	)

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAttemptLimitReached) {
		t.Fatalf("expected ErrAttemptLimitReached, got %v", err)
	}
	if got := s.Phase(); got != entities.PhaseRules {
		t.Fatalf("expected rules phase after denial, got %s", got)
	}
}

func TestSessionBankFailureIsRestartable(t *testing.T) {
	bank := &fakeBank{err: errors.New("network down")}
	kv := storage.NewMemoryKV()
	s := NewSession(
		SessionConfig{QuestionTime: 120 * time.Second, NegativeMark: 0.25},
		bank,
		NewShuffler(kv, 10),
		NewRateLimiter(kv, 100),
		NewGuard(GuardConfig{}),
		nil,
	)

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if got := s.Phase(); got != entities.PhaseRules {
		t.Fatalf("expected rules phase after load failure, got %s", got)
	}

	bank.err = nil
	bank.questions = testPool(4)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart after load failure: %v", err)
	}
	if got := s.Phase(); got != entities.PhaseRunning {
		t.Fatalf("expected running, got %s", got)
	}
}

func TestSessionForceTerminate(t *testing.T) {
	observer := newRecordingObserver()
	s := newTestSession(t, testPool(4), SessionConfig{}, observer)

	if err := s.EnterRules(3); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.ForceTerminate()

	if got := s.Phase(); got != entities.PhaseExited {
		t.Fatalf("expected exited, got %s", got)
	}
	select {
	case report := <-observer.exited:
		if report == nil {
			t.Fatal("expected exit report")
		}
	default:
		t.Fatal("exit was not observed")
	}

	// Repeated termination is a no-op.
	s.ForceTerminate()
	if got := s.Phase(); got != entities.PhaseExited {
		t.Fatalf("phase changed on repeated terminate: %s", got)
	}
}

func TestSessionGuardTerminatesOnHiddenTab(t *testing.T) {
	kv := storage.NewMemoryKV()
	guard := NewGuard(GuardConfig{TerminateOnHidden: true, BlockContextMenu: true})
	s := NewSession(
		SessionConfig{QuestionTime: 120 * time.Second, NegativeMark: 0.25},
		&fakeBank{questions: testPool(4)},
		NewShuffler(kv, 10),
		NewRateLimiter(kv, 100),
		guard,
		nil,
	)

	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if action := guard.Handle(entities.SignalTabHidden); action != ActionTerminated {
		t.Fatalf("expected termination, got %s", action)
	}
	if got := s.Phase(); got != entities.PhaseExited {
		t.Fatalf("expected exited, got %s", got)
	}

	// The guard is deregistered on termination: later signals are ignored.
	if action := guard.Handle(entities.SignalContextMenu); action != ActionIgnored {
		t.Fatalf("expected ignored after disarm, got %s", action)
	}
}

func TestSessionCommandPhaseValidation(t *testing.T) {
	s := newTestSession(t, testPool(4), SessionConfig{}, nil)

	if err := s.SubmitAnswer(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("submit in setup: expected ErrInvalidPhase, got %v", err)
	}
	if err := s.EnterRules(-1); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
	if err := s.EnterRules(2); err != nil {
		t.Fatalf("enter rules: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.SelectOption(99); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if err := s.EnterRules(3); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("enter rules while running: expected ErrInvalidPhase, got %v", err)
	}
}
