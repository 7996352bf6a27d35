package service

import (
	"fmt"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
)

// BuildReport renders the final score and the per-question correctness
// breakdown from a session's recorded state. Questions past the recorded
// responses (possible after an early exit) are reported as unanswered.
func BuildReport(questions []entities.Question, responses []entities.Response, score float64) *entities.Report {
	report := &entities.Report{
		Score:          score,
		TotalQuestions: len(questions),
		Items:          make([]entities.ReportItem, 0, len(questions)),
	}

	if len(questions) > 0 {
		percent := score / float64(len(questions)) * 100
		if percent < 0 {
			percent = 0
		}
		report.Percent = percent
	}

	for i, q := range questions {
		response := entities.Response{Kind: entities.ResponseSkipped}
		if i < len(responses) {
			response = responses[i]
		}

		verdicts := make([]entities.OptionVerdict, len(q.Options))
		for idx := range q.Options {
			verdicts[idx] = classifyOption(idx, q.CorrectIndex, response)
		}

		report.Items = append(report.Items, entities.ReportItem{
			Text:     q.Text,
			Options:  q.Options,
			Verdicts: verdicts,
			Response: response,
		})
	}

	return report
}

// classifyOption assigns the review class for one option: the correct option
// is always marked, a wrongly chosen option is marked wrong, and every other
// option of a skipped or timed-out question is marked skipped.
func classifyOption(idx, correctIdx int, response entities.Response) entities.OptionVerdict {
	switch {
	case idx == correctIdx:
		return entities.VerdictCorrect
	case response.Kind == entities.ResponseAnswered && response.OptionIndex == idx:
		return entities.VerdictWrong
	case response.Kind != entities.ResponseAnswered:
		return entities.VerdictSkipped
	default:
		return entities.VerdictNone
	}
}

// FormatClock renders remaining seconds as M:SS, seconds zero-padded,
// minutes unpadded.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(percent float64) string {
	return fmt.Sprintf("%.2f", percent)
}
