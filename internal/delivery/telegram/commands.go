package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
)

// Question counts offered on the setup panel.
var setupCounts = []int{10, 25, 50}

func (h *Handler) handleStart(_ context.Context, chatID int64) error {
	return h.sendSetupPanel(chatID)
}

func (h *Handler) handleQuizCommand(_ context.Context, chatID int64) error {
	runner := h.runner(chatID)
	if runner.session.Phase() == entities.PhaseRunning {
		h.send(newHTMLMessage(chatID, msgAlreadyRunning))
		return nil
	}
	return h.sendSetupPanel(chatID)
}

func (h *Handler) handleExitCommand(_ context.Context, chatID int64) error {
	h.mu.Lock()
	runner, ok := h.chats[chatID]
	h.mu.Unlock()

	if !ok || runner.session.Phase() != entities.PhaseRunning {
		h.send(newHTMLMessage(chatID, msgNoSession))
		return nil
	}

	runner.session.ForceTerminate()
	return nil
}

func (h *Handler) sendSetupPanel(chatID int64) error {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(setupCounts))
	for _, count := range setupCounts {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			formatCount(count), setupData(count),
		))
	}

	msg := newHTMLMessage(chatID, msgWelcome)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))

	if _, err := h.bot.Send(msg); err != nil {
		return err
	}
	return nil
}
