package entities

// Question is a single multiple-choice question from the published bank.
// The JSON tags match the raw bank format: {"question", "options", "answer"}.
type Question struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"answer"`
}
