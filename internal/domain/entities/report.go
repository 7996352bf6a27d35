package entities

// OptionVerdict classifies a single option in the per-question breakdown.
type OptionVerdict string

const (
	VerdictCorrect OptionVerdict = "correct"
	VerdictWrong   OptionVerdict = "wrong"
	VerdictSkipped OptionVerdict = "skipped"
	VerdictNone    OptionVerdict = ""
)

// ReportItem is one question's row in the final review.
type ReportItem struct {
	Text     string          `json:"text"`
	Options  []string        `json:"options"`
	Verdicts []OptionVerdict `json:"verdicts"`
	Response Response        `json:"response"`
}

// Report is the final result of a finished or exited session.
// Percent is clamped at zero: the cumulative penalty may drive the raw
// score negative, but the displayed percentage never is.
type Report struct {
	Score          float64      `json:"score"`
	Percent        float64      `json:"percent"`
	TotalQuestions int          `json:"total_questions"`
	Items          []ReportItem `json:"items"`
}
