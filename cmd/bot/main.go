package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/database"
	"github.com/mroshb/quizbot/internal/jobs"
	"github.com/mroshb/quizbot/internal/ledger"
	"github.com/mroshb/quizbot/internal/middleware"
	"github.com/mroshb/quizbot/internal/questions"
	"github.com/mroshb/quizbot/internal/quiz"
	"github.com/mroshb/quizbot/pkg/errors"
	"github.com/mroshb/quizbot/pkg/logger"
	"github.com/mroshb/quizbot/telegram"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.AppEnv)
	defer logger.Sync()

	logger.Info("Starting quiz bot...", "env", cfg.AppEnv, "ledger_backend", cfg.LedgerBackend)

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenLedgerStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open ledger store", err)
	}
	defer closeStore()

	scores := ledger.Open(ctx, store)
	logger.Info("Ledger loaded", "period", scores.Period())

	bank, err := questions.Load(cfg.QuestionsFile)
	if err != nil {
		if !errors.IsCode(err, errors.ErrCodeMissingQuestionBank) {
			logger.Fatal("Failed to load questions", err)
		}
		logger.Warn("Question bank missing, quizzes will end immediately", "path", cfg.QuestionsFile)
	}
	logger.Info("Questions loaded", "count", bank.Len(), "path", cfg.QuestionsFile)

	messages, err := quiz.LoadMessages(cfg.MessagesFile)
	if err != nil {
		logger.Fatal("Failed to load messages", err)
	}

	api, err := telegram.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize bot", err)
	}
	client := telegram.NewClient(api)

	engine := quiz.NewEngine(quiz.NewRegistry(), bank, scores, client,
		quiz.WithMessages(messages),
		quiz.WithLeaderboardSize(cfg.LeaderboardSize),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.GetRateLimitWindow())
	bot := telegram.NewBot(cfg, api, client, engine, limiter)
	rollover := jobs.NewRolloverJob(scores, cfg.GetRolloverInterval())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		return rollover.Run(gctx)
	})
	g.Go(func() error {
		limiter.Run(gctx, 5*time.Minute)
		return nil
	})

	logger.Info("Bot started successfully", "env", cfg.AppEnv, "workers", cfg.WorkerCount)

	if err := g.Wait(); err != nil {
		logger.Error("Bot exited with error", "error", err)
	}
	logger.Info("Bot stopped")
}
