package telegram

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yousafkhamza/devops-mcq-bot/internal/config"
	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
	"github.com/yousafkhamza/devops-mcq-bot/internal/service"
)

// chatRunner drives one chat's quiz presentation. It implements
// service.Observer; the callbacks arrive from inside the session (possibly
// on the timer goroutine), so the runner only sends and edits messages here
// and never calls back into the session.
type chatRunner struct {
	bot     *tgbotapi.BotAPI
	logger  *zap.Logger
	chatID  int64
	exam    config.Exam
	limiter *service.RateLimiter
	session *service.Session

	mu            sync.Mutex
	questionMsgID int
	timerMsgID    int
	lastTimerText string
}

func (r *chatRunner) QuestionPresented(position, total int, question entities.Question, remainingSeconds int) {
	text := fmt.Sprintf("<b>Question %d / %d</b>\n\n%s", position+1, total, question.Text)

	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = optionKeyboard(question.Options, -1)

	sent, err := r.bot.Send(msg)
	if err != nil {
		r.logger.Error("send question", zap.Int64("chat_id", r.chatID), zap.Error(err))
		return
	}

	timerText := timerLine(remainingSeconds, service.TimerNormal)
	timerMsg, err := r.bot.Send(tgbotapi.NewMessage(r.chatID, timerText))
	if err != nil {
		r.logger.Error("send timer", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}

	r.mu.Lock()
	r.questionMsgID = sent.MessageID
	r.timerMsgID = timerMsg.MessageID
	r.lastTimerText = timerText
	r.mu.Unlock()
}

func (r *chatRunner) TimerTicked(remainingSeconds int, level service.TimerLevel) {
	text := timerLine(remainingSeconds, level)

	r.mu.Lock()
	msgID := r.timerMsgID
	changed := text != r.lastTimerText
	r.lastTimerText = text
	r.mu.Unlock()

	if msgID == 0 || !changed {
		return
	}

	edit := tgbotapi.NewEditMessageText(r.chatID, msgID, text)
	if _, err := r.bot.Send(edit); err != nil {
		r.logger.Debug("edit timer", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

func (r *chatRunner) DangerSignaled(int) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.chatID, msgTenLeft)); err != nil {
		r.logger.Debug("danger cue", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

func (r *chatRunner) QuestionTimedOut(int) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.chatID, msgTimeUp)); err != nil {
		r.logger.Debug("timeout notice", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

func (r *chatRunner) Finished(report *entities.Report) {
	r.cleanupTimer()
	r.sendHTML(renderReport(report))
}

func (r *chatRunner) Exited(report *entities.Report) {
	r.cleanupTimer()
	if r.exam.ExitShowsReport {
		r.sendHTML(renderReport(report))
		return
	}
	r.sendHTML(msgThankYou)
}

// markSelection redraws the option keyboard with the chosen option checked.
func (r *chatRunner) markSelection(messageID, index int) {
	question, ok := r.session.CurrentQuestion()
	if !ok {
		return
	}

	keyboard := optionKeyboard(question.Options, index)
	edit := tgbotapi.NewEditMessageReplyMarkup(r.chatID, messageID, keyboard)
	if _, err := r.bot.Send(edit); err != nil {
		r.logger.Debug("mark selection", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

func (r *chatRunner) cleanupTimer() {
	r.mu.Lock()
	msgID := r.timerMsgID
	r.timerMsgID = 0
	r.mu.Unlock()

	if msgID == 0 {
		return
	}
	if _, err := r.bot.Request(tgbotapi.NewDeleteMessage(r.chatID, msgID)); err != nil {
		r.logger.Debug("delete timer message", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

func (r *chatRunner) sendHTML(text string) {
	msg := newHTMLMessage(r.chatID, text)
	if _, err := r.bot.Send(msg); err != nil {
		r.logger.Error("send message", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

// optionKeyboard builds one button per option plus the action row.
func optionKeyboard(options []string, selected int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for i, opt := range options {
		label := opt
		if i == selected {
			label = "✅ " + opt
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, optionData(i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Submit", actData(actSubmit)),
		tgbotapi.NewInlineKeyboardButtonData("Skip", actData(actSkip)),
		tgbotapi.NewInlineKeyboardButtonData("Exit", actData(actExit)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// timerLine renders the countdown as M:SS with an urgency marker.
func timerLine(remainingSeconds int, level service.TimerLevel) string {
	clock := service.FormatClock(remainingSeconds)
	switch level {
	case service.TimerDanger:
		return "🔴 " + clock
	case service.TimerWarning:
		return "🟡 " + clock
	default:
		return "⏳ " + clock
	}
}
