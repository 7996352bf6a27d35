package telegram

import (
	"fmt"
	"strings"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
	"github.com/yousafkhamza/devops-mcq-bot/internal/service"
)

// renderReport formats the final result with the per-question breakdown.
func renderReport(report *entities.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>Final Result</b>\n<b>%s%%</b>\n", service.FormatPercent(report.Percent))

	for i, item := range report.Items {
		fmt.Fprintf(&b, "\n<b>Q%d. %s</b>\n", i+1, item.Text)
		for idx, opt := range item.Options {
			fmt.Fprintf(&b, "%s %s\n", verdictMark(item.Verdicts[idx]), opt)
		}
	}

	return b.String()
}

func verdictMark(verdict entities.OptionVerdict) string {
	switch verdict {
	case entities.VerdictCorrect:
		return "✅"
	case entities.VerdictWrong:
		return "❌"
	case entities.VerdictSkipped:
		return "⚪"
	default:
		return "▫️"
	}
}
