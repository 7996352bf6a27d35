package entities

// Phase is the lifecycle stage of a quiz session.
type Phase string

const (
	PhaseSetup    Phase = "setup"    // choosing question count
	PhaseRules    Phase = "rules"    // reading the rules, not yet started
	PhaseRunning  Phase = "running"  // answering questions under the countdown
	PhaseFinished Phase = "finished" // all questions answered, report available
	PhaseExited   Phase = "exited"   // terminated early (user exit or guard)
)

// ResponseKind classifies how a question was closed out.
type ResponseKind string

const (
	ResponseAnswered ResponseKind = "answered"
	ResponseSkipped  ResponseKind = "skipped"
	ResponseTimedOut ResponseKind = "timed-out"
)

// Response records the outcome for a single question. OptionIndex is only
// meaningful when Kind is ResponseAnswered.
type Response struct {
	Kind        ResponseKind
	OptionIndex int
}

// AttemptRecord is the persisted per-day attempt counter used for rate
// limiting. Count is reset whenever Date no longer matches the current day.
type AttemptRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
