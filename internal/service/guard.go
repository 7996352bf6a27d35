package service

import (
	"sync"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
)

// Action is the guard's disposition for an observed environment signal.
type Action string

const (
	ActionIgnored    Action = "ignored"
	ActionSuppressed Action = "suppressed"
	ActionTerminated Action = "terminated"
)

// GuardConfig toggles the individual exam-mode watchers.
type GuardConfig struct {
	BlockContextMenu    bool
	TerminateOnHidden   bool
	BlockZoom           bool
	TerminateOnDevtools bool
}

// Guard is the exam-mode layer. While armed, it suppresses blocked client
// events and force-terminates the session on cheating signals. Outside a
// running session every signal is ignored, so the setup and report screens
// are unaffected.
type Guard struct {
	cfg GuardConfig

	mu        sync.Mutex
	armed     bool
	terminate func()
}

// NewGuard creates a Guard with the given toggles. It stays disarmed until
// a session arms it.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{cfg: cfg}
}

// Arm activates the watchers for the duration of a running session.
// terminate is invoked on signals configured to end the session.
func (g *Guard) Arm(terminate func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.terminate = terminate
}

// Disarm deactivates all watchers.
func (g *Guard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
	g.terminate = nil
}

// Armed reports whether the guard is currently active.
func (g *Guard) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Handle dispatches one observed signal and returns the action taken.
func (g *Guard) Handle(signal entities.Signal) Action {
	g.mu.Lock()
	armed := g.armed
	terminate := g.terminate
	g.mu.Unlock()

	if !armed {
		return ActionIgnored
	}

	switch signal {
	case entities.SignalContextMenu:
		if g.cfg.BlockContextMenu {
			return ActionSuppressed
		}
	case entities.SignalZoomShortcut:
		if g.cfg.BlockZoom {
			return ActionSuppressed
		}
	case entities.SignalTabHidden:
		if g.cfg.TerminateOnHidden && terminate != nil {
			terminate()
			return ActionTerminated
		}
	case entities.SignalDevtoolsShortcut:
		if g.cfg.TerminateOnDevtools && terminate != nil {
			terminate()
			return ActionTerminated
		}
	}

	return ActionIgnored
}
