package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yousafkhamza/devops-mcq-bot/internal/config"
	"github.com/yousafkhamza/devops-mcq-bot/internal/repository"
	"github.com/yousafkhamza/devops-mcq-bot/internal/service"
)

// Handler routes Telegram updates into per-chat quiz sessions. Each chat gets
// its own session, rate limiter and rotation offset, namespaced inside the
// shared key-value store.
type Handler struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	bank   service.BankRepository
	kv     repository.KV
	quiz   config.Quiz
	exam   config.Exam

	mu    sync.Mutex
	chats map[int64]*chatRunner
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	bank service.BankRepository,
	kv repository.KV,
	quiz config.Quiz,
	exam config.Exam,
) *Handler {
	return &Handler{
		bot:    bot,
		logger: logger,
		bank:   bank,
		kv:     kv,
		quiz:   quiz,
		exam:   exam,
		chats:  make(map[int64]*chatRunner),
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	if !update.Message.IsCommand() {
		return
	}

	chatID := update.Message.Chat.ID
	switch update.Message.Command() {
	case "start":
		h.withErrorHandling(h.handleStart)(ctx, chatID)
	case "quiz":
		h.withErrorHandling(h.handleQuizCommand)(ctx, chatID)
	case "exit":
		h.withErrorHandling(h.handleExitCommand)(ctx, chatID)
	case "help":
		h.send(newHTMLMessage(chatID, msgHelp))
	default:
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// Lookup returns the live session for a chat, for the HTTP API.
func (h *Handler) Lookup(chatID int64) (*service.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	runner, ok := h.chats[chatID]
	if !ok {
		return nil, false
	}
	return runner.session, true
}

// runner returns the chat's quiz runner, creating it on first use.
func (h *Handler) runner(chatID int64) *chatRunner {
	h.mu.Lock()
	defer h.mu.Unlock()

	if runner, ok := h.chats[chatID]; ok {
		return runner
	}

	kv := repository.Namespace(h.kv, fmt.Sprintf("chat:%d:", chatID))
	limiter := service.NewRateLimiter(kv, h.quiz.MaxAttempts)

	runner := &chatRunner{
		bot:     h.bot,
		logger:  h.logger,
		chatID:  chatID,
		exam:    h.exam,
		limiter: limiter,
	}
	runner.session = service.NewSession(
		service.SessionConfig{
			QuestionTime:     h.quiz.QuestionTime,
			NegativeMark:     h.quiz.NegativeMark,
			WarningThreshold: h.quiz.WarningThreshold,
			DangerThreshold:  h.quiz.DangerThreshold,
		},
		h.bank,
		service.NewShuffler(kv, h.quiz.RotationStride),
		limiter,
		service.NewGuard(service.GuardConfig{
			BlockContextMenu:    h.exam.BlockContextMenu,
			TerminateOnHidden:   h.exam.TerminateOnHidden,
			BlockZoom:           h.exam.BlockZoom,
			TerminateOnDevtools: h.exam.TerminateOnDevtools,
		}),
		runner,
	)

	h.chats[chatID] = runner
	return runner
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("send message", zap.Error(err))
	}
}

func (h *Handler) sendError(chatID int64, text string) {
	h.send(newHTMLMessage(chatID, text))
}
