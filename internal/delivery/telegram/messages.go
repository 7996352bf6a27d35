// messages.go contains message templates used by the Telegram delivery.

package telegram

const (
	msgWelcome = "<b>DevOps MCQ Quiz</b>\n\n" +
		"Timed multiple-choice questions on DevOps topics.\n" +
		"Pick how many questions you want to face:"

	msgRules = "<b>Rules</b>\n\n" +
		"• %d questions, one at a time\n" +
		"• %s per question, the question closes when time runs out\n" +
		"• correct answer: <b>+1</b>, wrong answer: <b>−%.2f</b>, skipped: <b>0</b>\n" +
		"• leaving the quiz ends the session immediately\n\n" +
		"Attempts left today: <b>%d</b>"

	msgLimitReached   = "Daily attempt limit reached. Try again tomorrow."
	msgLoadFailed     = "Could not load the question bank. Please try again."
	msgInternalError  = "Something went wrong. Please try later."
	msgUnknownCommand = "Unknown command. Available commands:\n\n/quiz — start a quiz\n/exit — leave the current quiz\n/help — help"
	msgHelp           = "<b>Commands</b>\n\n/quiz — start a new quiz\n/exit — leave the running quiz\n/help — this message"

	msgAlreadyRunning = "A quiz is already running. Finish it or use /exit first."

	msgTimeUp    = "⏰ Time is up for this question. Moving on."
	msgTenLeft   = "⚠️ 10 seconds left!"
	msgClosed    = "This question is already closed."
	msgNoSession = "No quiz is running. Use /quiz to start one."
	msgThankYou  = "<b>Thanks for playing!</b>\n\nThe session was ended early. Use /quiz to start again."
)
