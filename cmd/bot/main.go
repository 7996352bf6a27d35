package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yousafkhamza/devops-mcq-bot/internal/config"
	"github.com/yousafkhamza/devops-mcq-bot/internal/delivery/httpapi"
	"github.com/yousafkhamza/devops-mcq-bot/internal/delivery/telegram"
	"github.com/yousafkhamza/devops-mcq-bot/internal/infra/postgres"
	pgrepo "github.com/yousafkhamza/devops-mcq-bot/internal/infra/postgres/repository"
	"github.com/yousafkhamza/devops-mcq-bot/internal/logger"
	"github.com/yousafkhamza/devops-mcq-bot/internal/repository"
	"github.com/yousafkhamza/devops-mcq-bot/internal/service"
	"github.com/yousafkhamza/devops-mcq-bot/internal/storage"
)

func main() {
	// Load variables from .env if present, before config reads the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("telegram auth", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "quiz",
			Description: "Start a timed quiz",
		},
		{
			Command:     "exit",
			Description: "Leave the running quiz",
		},
		{
			Command:     "help",
			Description: "Help",
		},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("set bot commands", zap.Error(err))
	}

	zl.Info("authorized", zap.String("account", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pick the quiz state store.
	var kv repository.KV
	switch cfg.Storage {
	case "postgres":
		dsn, err := cfg.DB.DSN()
		if err != nil {
			zl.Fatal("database config", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			zl.Fatal("connect database", zap.Error(err))
		}
		defer pool.Close()

		if err := postgres.InitSchema(ctx, pool); err != nil {
			zl.Fatal("init schema", zap.Error(err))
		}
		kv = pgrepo.NewKVRepository(pool)
	default:
		kv = storage.NewMemoryKV()
	}

	var bank service.BankRepository
	if cfg.Bank.URL != "" {
		bank = repository.NewBankRepository(cfg.Bank.URL)
	} else {
		bank = repository.NewFileBankRepository(cfg.Bank.Path)
	}

	handler := telegram.NewHandler(bot, zl, bank, kv, cfg.Quiz, cfg.Exam)
	api := httpapi.NewServer(cfg.HTTP.Addr, zl, handler)

	go func() {
		if err := api.Run(ctx); err != nil {
			zl.Error("http api", zap.Error(err))
		}
	}()

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("telegram handler", zap.Error(err))
	}

	zl.Info("shutdown signal received")
}
