package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionSetup  = "setup"  // setup:<count>, question count chosen
	actionQuiz   = "quiz"   // quiz:start, begin the quiz from the rules panel
	actionOption = "opt"    // opt:<index>, tentative option choice
	actionAct    = "act"    // act:submit | act:skip | act:exit
)

// Quiz sub-actions.
const (
	quizStart = "start"
)

// Act sub-actions.
const (
	actSubmit = "submit"
	actSkip   = "skip"
	actExit   = "exit"
)

func setupData(count int) string   { return fmt.Sprintf("%s:%d", actionSetup, count) }
func optionData(index int) string  { return fmt.Sprintf("%s:%d", actionOption, index) }
func actData(action string) string { return actionAct + ":" + action }

// parseIntData extracts the numeric payload from "<prefix>:<n>".
func parseIntData(data, prefix string) (int, bool) {
	payload, ok := strings.CutPrefix(data, prefix+":")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(payload)
	if err != nil {
		return 0, false
	}
	return n, true
}
