package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
)

var (
	ErrAttemptLimitReached = errors.New("daily attempt limit reached")
	ErrInvalidPhase        = errors.New("action not allowed in current phase")
	ErrQuestionClosed      = errors.New("question already closed")
	ErrInvalidOption       = errors.New("option index out of range")
	ErrInvalidCount        = errors.New("question count must not be negative")
	ErrNoReport            = errors.New("session has not finished")
)

// TimerLevel is the urgency of the countdown shown to the user.
type TimerLevel string

const (
	TimerNormal  TimerLevel = "normal"
	TimerWarning TimerLevel = "warning" // sustained, re-evaluated every tick
	TimerDanger  TimerLevel = "danger"
)

// Observer receives presentation-level session events. Callbacks may arrive
// from the timer goroutine and are invoked while the session holds its
// internal lock, so implementations must not call back into the Session.
type Observer interface {
	QuestionPresented(position, total int, question entities.Question, remainingSeconds int)
	TimerTicked(remainingSeconds int, level TimerLevel)
	DangerSignaled(remainingSeconds int)
	QuestionTimedOut(position int)
	Finished(report *entities.Report)
	Exited(report *entities.Report)
}

// SessionConfig contains the per-session quiz parameters.
type SessionConfig struct {
	QuestionTime     time.Duration
	NegativeMark     float64
	WarningThreshold time.Duration
	DangerThreshold  time.Duration
}

// Session is the quiz state machine. It owns the question set, the recorded
// responses, the cumulative score and the single live countdown timer, and
// moves through setup -> rules -> running -> finished/exited.
//
// The mutex serializes user commands against timer callbacks; the per-question
// finalize flag makes a last-instant submit and a timeout race benign: only
// the first taken action records a response and advances.
type Session struct {
	cfg      SessionConfig
	bank     BankRepository
	shuffler *Shuffler
	limiter  *RateLimiter
	guard    *Guard
	observer Observer
	timer    *CountdownTimer

	mu             sync.Mutex
	phase          entities.Phase
	requestedCount int
	questions      []entities.Question
	position       int
	score          float64
	responses      []entities.Response
	selected       int
	finalized      bool
	dangerFired    bool
	timerGen       int
}

// NewSession creates a session in the setup phase.
func NewSession(
	cfg SessionConfig,
	bank BankRepository,
	shuffler *Shuffler,
	limiter *RateLimiter,
	guard *Guard,
	observer Observer,
) *Session {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Session{
		cfg:      cfg,
		bank:     bank,
		shuffler: shuffler,
		limiter:  limiter,
		guard:    guard,
		observer: observer,
		timer:    NewCountdownTimer(cfg.QuestionTime),
		phase:    entities.PhaseSetup,
		selected: -1,
	}
}

// EnterRules records the requested question count and moves to the rules
// phase. Valid from any phase except running, so a finished session can be
// restarted from setup.
func (s *Session) EnterRules(count int) error {
	if count < 0 {
		return ErrInvalidCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == entities.PhaseRunning {
		return ErrInvalidPhase
	}

	s.requestedCount = count
	s.phase = entities.PhaseRules
	return nil
}

// Start consumes a daily attempt, loads the question bank and begins the
// quiz. On a denied attempt or a bank load failure the session stays in the
// rules phase and can be restarted. An empty selection finishes immediately.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != entities.PhaseRules {
		s.mu.Unlock()
		return ErrInvalidPhase
	}
	count := s.requestedCount
	s.mu.Unlock()

	allowed, err := s.limiter.TryConsumeAttempt(ctx)
	if err != nil {
		return fmt.Errorf("consume attempt: %w", err)
	}
	if !allowed {
		return ErrAttemptLimitReached
	}

	// No active question exists until the bank arrives; the phase stays at
	// rules, so answer commands are rejected while we wait.
	pool, err := s.bank.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	questions, err := s.shuffler.SelectQuestions(ctx, pool, count)
	if err != nil {
		return fmt.Errorf("select questions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRules {
		return ErrInvalidPhase
	}

	s.questions = questions
	s.position = 0
	s.score = 0
	s.responses = make([]entities.Response, 0, len(questions))
	s.phase = entities.PhaseRunning
	s.guard.Arm(s.ForceTerminate)

	if len(s.questions) == 0 {
		s.finishLocked()
		return nil
	}

	s.presentLocked()
	return nil
}

// SelectOption records a tentative choice for the current question without
// scoring or advancing.
func (s *Session) SelectOption(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning {
		return ErrInvalidPhase
	}
	if s.finalized {
		return ErrQuestionClosed
	}
	if index < 0 || index >= len(s.questions[s.position].Options) {
		return ErrInvalidOption
	}

	s.selected = index
	return nil
}

// SubmitAnswer finalizes the current question with the tentative choice.
// With no choice made it records an unanswered question with no score
// change; otherwise a correct answer scores +1 and a wrong one costs the
// negative mark. Then the session advances.
func (s *Session) SubmitAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning {
		return ErrInvalidPhase
	}
	if s.finalized {
		return ErrQuestionClosed
	}

	response := entities.Response{Kind: entities.ResponseSkipped}
	if s.selected >= 0 {
		response = entities.Response{Kind: entities.ResponseAnswered, OptionIndex: s.selected}
		if s.selected == s.questions[s.position].CorrectIndex {
			s.score++
		} else {
			s.score -= s.cfg.NegativeMark
		}
	}

	s.finalized = true
	s.responses = append(s.responses, response)
	s.advanceLocked()
	return nil
}

// SkipAnswer finalizes the current question as unanswered, with no score
// change, and advances. Any tentative choice is discarded.
func (s *Session) SkipAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning {
		return ErrInvalidPhase
	}
	if s.finalized {
		return ErrQuestionClosed
	}

	s.finalized = true
	s.responses = append(s.responses, entities.Response{Kind: entities.ResponseSkipped})
	s.advanceLocked()
	return nil
}

// ForceTerminate ends a running session immediately, stopping the timer and
// disarming the guard before the exit report is built. Safe to call from any
// phase; outside running it is a no-op.
func (s *Session) ForceTerminate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning {
		return
	}

	s.timer.Stop()
	s.timerGen++
	s.guard.Disarm()
	s.phase = entities.PhaseExited
	s.observer.Exited(s.reportLocked())
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() entities.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score returns the cumulative score, which may be negative.
func (s *Session) Score() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Position returns the current question index.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// TotalQuestions returns the size of the active question set.
func (s *Session) TotalQuestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// SelectedOption returns the tentative choice for the current question,
// or -1 when none was made.
func (s *Session) SelectedOption() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// CurrentQuestion returns the active question while running.
func (s *Session) CurrentQuestion() (entities.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning || s.position >= len(s.questions) {
		return entities.Question{}, false
	}
	return s.questions[s.position], true
}

// Responses returns a copy of the recorded responses.
func (s *Session) Responses() []entities.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Response(nil), s.responses...)
}

// Guard returns the session's exam-mode guard.
func (s *Session) Guard() *Guard {
	return s.guard
}

// Report returns the final report for a finished or exited session.
func (s *Session) Report() (*entities.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseFinished && s.phase != entities.PhaseExited {
		return nil, ErrNoReport
	}
	return s.reportLocked(), nil
}

// presentLocked loads the question at the current position and restarts the
// countdown. The generation counter invalidates callbacks from any timer run
// that was cancelled mid-tick.
func (s *Session) presentLocked() {
	s.selected = -1
	s.finalized = false
	s.dangerFired = false
	s.timerGen++
	gen := s.timerGen

	question := s.questions[s.position]
	s.observer.QuestionPresented(s.position, len(s.questions), question, s.timer.totalSeconds)

	s.timer.Start(
		func(remaining int) { s.handleTick(gen, remaining) },
		func() { s.handleTimeout(gen) },
	)
}

// advanceLocked moves to the next question or finishes the quiz.
func (s *Session) advanceLocked() {
	s.position++
	if s.position >= len(s.questions) {
		s.finishLocked()
		return
	}
	s.presentLocked()
}

// finishLocked stops the timer and guard and publishes the final report.
func (s *Session) finishLocked() {
	s.timer.Stop()
	s.timerGen++
	s.guard.Disarm()
	s.phase = entities.PhaseFinished
	s.observer.Finished(s.reportLocked())
}

func (s *Session) reportLocked() *entities.Report {
	return BuildReport(s.questions, s.responses, s.score)
}

func (s *Session) handleTick(gen, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning || gen != s.timerGen {
		return
	}

	level := TimerNormal
	switch {
	case remaining <= int(s.cfg.DangerThreshold/time.Second):
		level = TimerDanger
	case remaining <= int(s.cfg.WarningThreshold/time.Second):
		level = TimerWarning
	}

	// The danger cue fires once per question; the level itself is sustained.
	if level == TimerDanger && !s.dangerFired {
		s.dangerFired = true
		s.observer.DangerSignaled(remaining)
	}

	s.observer.TimerTicked(remaining, level)
}

// handleTimeout treats the current question as timed out: a distinct
// response with no score change, then auto-advance. A question already
// finalized by a last-instant submit is left alone.
func (s *Session) handleTimeout(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != entities.PhaseRunning || gen != s.timerGen || s.finalized {
		return
	}

	s.finalized = true
	s.responses = append(s.responses, entities.Response{Kind: entities.ResponseTimedOut})
	s.observer.QuestionTimedOut(s.position)
	s.advanceLocked()
}

type nopObserver struct{}

func (nopObserver) QuestionPresented(int, int, entities.Question, int) {}
func (nopObserver) TimerTicked(int, TimerLevel)                        {}
func (nopObserver) DangerSignaled(int)                                 {}
func (nopObserver) QuestionTimedOut(int)                               {}
func (nopObserver) Finished(*entities.Report)                          {}
func (nopObserver) Exited(*entities.Report)                            {}
