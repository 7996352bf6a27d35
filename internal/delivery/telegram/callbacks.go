package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yousafkhamza/devops-mcq-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	var notice string
	switch {
	case strings.HasPrefix(cb.Data, actionSetup+":"):
		notice = h.handleSetupCallback(chatID, cb.Data)
	case cb.Data == actionQuiz+":"+quizStart:
		notice = h.handleStartCallback(ctx, chatID)
	case strings.HasPrefix(cb.Data, actionOption+":"):
		notice = h.handleOptionCallback(chatID, cb)
	case strings.HasPrefix(cb.Data, actionAct+":"):
		notice = h.handleActionCallback(chatID, cb.Data)
	default:
		return
	}

	// Remove the user's "clock"; show a short notice when there is one.
	answer := tgbotapi.NewCallback(cb.ID, notice)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer", zap.Error(err))
	}
}

func (h *Handler) handleSetupCallback(chatID int64, data string) string {
	count, ok := parseIntData(data, actionSetup)
	if !ok || count < 0 {
		h.logger.Warn("invalid setup callback", zap.String("data", data))
		return ""
	}

	runner := h.runner(chatID)
	if err := runner.session.EnterRules(count); err != nil {
		h.logger.Warn("enter rules", zap.Int64("chat_id", chatID), zap.Error(err))
		return msgAlreadyRunning
	}

	h.sendRulesPanel(runner, count)
	return ""
}

func (h *Handler) handleStartCallback(ctx context.Context, chatID int64) string {
	runner := h.runner(chatID)

	err := runner.session.Start(ctx)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrAttemptLimitReached):
		h.send(newHTMLMessage(chatID, msgLimitReached))
	case errors.Is(err, service.ErrInvalidPhase):
		return msgClosed
	default:
		h.logger.Error("start quiz", zap.Int64("chat_id", chatID), zap.Error(err))
		h.send(newHTMLMessage(chatID, msgLoadFailed))
	}
	return ""
}

func (h *Handler) handleOptionCallback(chatID int64, cb *tgbotapi.CallbackQuery) string {
	index, ok := parseIntData(cb.Data, actionOption)
	if !ok {
		return ""
	}

	runner := h.runner(chatID)
	if err := runner.session.SelectOption(index); err != nil {
		if errors.Is(err, service.ErrQuestionClosed) {
			return msgClosed
		}
		return ""
	}

	runner.markSelection(cb.Message.MessageID, index)
	return ""
}

func (h *Handler) handleActionCallback(chatID int64, data string) string {
	h.mu.Lock()
	runner, ok := h.chats[chatID]
	h.mu.Unlock()
	if !ok {
		return msgNoSession
	}

	var err error
	switch strings.TrimPrefix(data, actionAct+":") {
	case actSubmit:
		err = runner.session.SubmitAnswer()
	case actSkip:
		err = runner.session.SkipAnswer()
	case actExit:
		runner.session.ForceTerminate()
	default:
		return ""
	}

	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrQuestionClosed):
		return msgClosed
	case errors.Is(err, service.ErrInvalidPhase):
		return msgNoSession
	default:
		h.logger.Error("quiz action", zap.Int64("chat_id", chatID), zap.Error(err))
		return ""
	}
}

func (h *Handler) sendRulesPanel(runner *chatRunner, count int) {
	remaining, err := runner.limiter.Remaining(context.Background())
	if err != nil {
		h.logger.Warn("attempts remaining", zap.Int64("chat_id", runner.chatID), zap.Error(err))
	}

	text := fmt.Sprintf(msgRules, count, h.quiz.QuestionTime, h.quiz.NegativeMark, remaining)
	msg := newHTMLMessage(runner.chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Start", actionQuiz+":"+quizStart),
		),
	)
	h.send(msg)
}

func formatCount(count int) string {
	return fmt.Sprintf("%d questions", count)
}
