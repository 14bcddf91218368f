package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Chupii37/AutoTweet-Bot/internal/content"
	"github.com/Chupii37/AutoTweet-Bot/internal/history"
	"github.com/Chupii37/AutoTweet-Bot/internal/orchestrator"
	"github.com/Chupii37/AutoTweet-Bot/internal/publisher"
	"github.com/Chupii37/AutoTweet-Bot/internal/ratelimit"
	"github.com/Chupii37/AutoTweet-Bot/internal/schedule"
	"github.com/Chupii37/AutoTweet-Bot/internal/storage"
	"github.com/Chupii37/AutoTweet-Bot/internal/validate"
	"github.com/Chupii37/AutoTweet-Bot/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "post a single tweet and exit")
	dryRun := flag.Bool("dry-run", false, "run without posting")
	listScheduled := flag.Bool("list-scheduled", false, "list this week's scheduled slots and exit")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}
	if *dryRun {
		cfg.DryRun = true
	}

	// Load category pools
	categories, err := storage.LoadCategoryFiles(cfg.Content.DataDir)
	if err != nil {
		logger.Fatal("Failed to load categories", zap.Error(err), zap.String("dir", cfg.Content.DataDir))
	}

	// Initialize storage
	var store storage.Store
	switch cfg.Database.Driver {
	case "memory":
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStore(categories)
	case "postgres":
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStore(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, categories)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	default:
		logger.Info("Using SQLite storage", zap.String("path", cfg.Database.Path))
		store, err = storage.OpenSQLite(cfg.Database.Path, categories)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, err := history.NewLedger(ctx, store, 0, logger)
	if err != nil {
		logger.Fatal("Failed to load history", zap.Error(err))
	}

	seed := cfg.Schedule.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	catalog, err := content.NewCatalog(categories, seed, cfg.Content.MaxHashtags, cfg.Validator.MaxLength, logger)
	if err != nil {
		logger.Fatal("Failed to build content catalog", zap.Error(err))
	}

	var gpt *content.GPTGenerator
	if cfg.OpenAI.Enabled {
		gpt = content.NewGPTGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger)
	}

	validator := validate.New(cfg.Validator.MaxLength, cfg.Validator.MaxHashtags, cfg.Validator.Blocklist)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.Capacity, time.Duration(cfg.RateLimit.PeriodHours*float64(time.Hour)))
	planner := schedule.NewPlanner(seed, cfg.Schedule.PlanRetryBudget, cfg.Schedule.StartHour, cfg.Schedule.EndHour, logger)
	clock := schedule.NewSystemClock()

	pub, err := buildPublisher(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create publisher", zap.Error(err))
	}

	orch := orchestrator.New(catalog, gpt, validator, ledger, limiter, pub, planner, clock, orchestrator.Options{
		PostsPerWeek:      cfg.Schedule.PostsPerWeek,
		MinGap:            time.Duration(cfg.Schedule.MinGapHours * float64(time.Hour)),
		Tick:              time.Duration(cfg.Schedule.TickSeconds) * time.Second,
		RetryBudget:       cfg.Content.RenderAttempts,
		RecentTopics:      cfg.Content.RecentTopics,
		DuplicateLookback: cfg.Content.DuplicateLookback,
		PublishTimeout:    time.Duration(cfg.Publisher.TimeoutSeconds) * time.Second,
		DryRun:            cfg.DryRun,
	}, logger)

	switch {
	case *listScheduled:
		week, err := orch.CurrentWeek(clock.Now())
		if err != nil {
			logger.Fatal("Failed to plan week", zap.Error(err))
		}
		printWeek(week, ledger)
	case *once:
		outcome, err := orch.RunOnce(ctx)
		if err != nil {
			logger.Fatal("Single attempt failed", zap.Error(err))
		}
		logger.Info("Single attempt finished", zap.String("outcome", string(outcome)))
	default:
		if !cfg.DryRun {
			if err := pub.Verify(ctx); err != nil {
				logger.Fatal("Publisher verification failed", zap.Error(err))
			}
		}
		if err := orch.Run(ctx); err != nil {
			logger.Fatal("Scheduler error", zap.Error(err))
		}
	}
}

func buildPublisher(cfg *config.Config, logger *zap.Logger) (publisher.Publisher, error) {
	if cfg.DryRun {
		// Never contacted in dry-run mode.
		return publisher.Noop{}, nil
	}
	timeout := time.Duration(cfg.Publisher.TimeoutSeconds) * time.Second
	switch cfg.Publisher.Platform {
	case "telegram":
		return publisher.NewTelegramPublisher(cfg.Publisher.TelegramToken, cfg.Publisher.TelegramChatID, logger)
	case "x", "twitter", "":
		return publisher.NewXPublisher(cfg.Publisher.BearerToken, timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown publisher platform %q", cfg.Publisher.Platform)
	}
}

func printWeek(week *schedule.Week, ledger *history.Ledger) {
	fmt.Println("Scheduled slots for week starting", week.Start().Format(time.RFC3339))
	for i, s := range week.Slots() {
		fmt.Printf("  %d. %s [%s]\n", i+1, s.At.Format("Mon 2006-01-02 15:04 MST"), s.State)
	}
	st := ledger.Stats()
	fmt.Printf("History: %d entries (%d posted, %d dry-run, %d failed)\n",
		st.Total, st.Posted, st.DryRun, st.Failed)
	_ = os.Stdout.Sync()
}
