package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sola/internal/adapters/ai"
	"sola/internal/adapters/alerts"
	"sola/internal/adapters/clickhouse"
	"sola/internal/adapters/config"
	"sola/internal/adapters/errors/noop"
	"sola/internal/adapters/errors/sentry"
	"sola/internal/adapters/kafka"
	"sola/internal/adapters/marketdata"
	"sola/internal/adapters/postgres"
	redisadapter "sola/internal/adapters/redis"
	"sola/internal/adapters/solana"
	"sola/internal/agents"
	"sola/internal/api"
	"sola/internal/api/health"
	"sola/internal/events"
	"sola/internal/metrics"
	chrepo "sola/internal/repository/clickhouse"
	pgrepo "sola/internal/repository/postgres"
	redisrepo "sola/internal/repository/redis"
	authsvc "sola/internal/services/auth"
	chatsvc "sola/internal/services/chat"
	tiersvc "sola/internal/services/tier"
	usagesvc "sola/internal/services/usage"
	"sola/internal/tools"
	"sola/internal/tools/catalog"
	"sola/internal/tools/shared"
	pkgauth "sola/pkg/auth"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	// Databases
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	redisClient, err := redisadapter.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()

	// Repositories
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo := pgrepo.NewUserRepository(pgClient.DB())
	usageRepo := chrepo.NewUsageRepository(chClient.Conn(), cfg.Usage.FlushBatch, cfg.Usage.FlushInterval)
	usageRepo.Start(ctx)
	sessionRepo := redisrepo.NewSessionRepository(redisClient, 0)
	balanceCache := redisrepo.NewBalanceCache(redisClient, cfg.Usage.BalanceTTL)

	// External clients
	solanaClient := solana.NewClient(cfg.Solana)
	marketClient := marketdata.NewClient(cfg.MarketData)
	notifier := initNotifier(cfg, log)
	publisher := events.NewPublisher(producer)

	provider, err := initAIProvider(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	log.Infof("AI provider: %s (model=%s)", provider.Name(), cfg.AI.DefaultModel)

	// Tools and agents
	toolRegistry := tools.NewRegistry()
	catalog.RegisterAll(toolRegistry, shared.Deps{
		Market: marketClient,
		Chain:  solanaClient,
		Log:    log,
	})
	dispatcher := tools.NewDispatcher(toolRegistry, notifier)
	agentRegistry := agents.NewDefaultRegistry(toolRegistry)

	// Services
	jwtService := pkgauth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTDuration)
	authService := authsvc.NewService(userRepo, jwtService)
	tierService := tiersvc.NewService(solanaClient, balanceCache, cfg.Solana.SolaMint)
	usageGate := usagesvc.NewService(tierService, usageRepo, publisher, notifier, cfg.Usage.Window())
	chatService := chatsvc.NewService(provider, cfg.AI.DefaultModel, agentRegistry,
		dispatcher, sessionRepo, usageGate, publisher)

	// HTTP server
	healthHandler := health.New(log, map[string]health.Checker{
		"postgres":   pgClient,
		"clickhouse": chClient,
		"redis":      redisClient,
	}, cfg.App.Name, version)

	handlers := api.NewHandlers(authService, chatService, usageGate, agentRegistry, dispatcher)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     version,
	}, handlers, healthHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(cfg, cancel, server, usageRepo, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initNotifier initializes the ops alert channel (Telegram or no-op)
func initNotifier(cfg *config.Config, log *logger.Logger) alerts.Notifier {
	if !cfg.Alerts.Enabled() {
		log.Info("Ops alerts disabled")
		return alerts.NewNoopNotifier()
	}

	notifier, err := alerts.NewTelegramNotifier(cfg.Alerts.TelegramBotToken, cfg.Alerts.AdminChatID)
	if err != nil {
		log.Warnf("Failed to initialize Telegram alerts: %v", err)
		return alerts.NewNoopNotifier()
	}

	log.Info("Ops alerts initialized (Telegram)")
	return notifier
}

// initAIProvider picks the configured chat completion backend
func initAIProvider(ctx context.Context, cfg config.AIConfig) (ai.Provider, error) {
	switch cfg.DefaultProvider {
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		return ai.NewGeminiProvider(ctx, cfg.GeminiKey)
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		return ai.NewOpenAIProvider(cfg.OpenAIKey), nil
	default:
		return nil, errors.Newf("unknown AI provider %q", cfg.DefaultProvider)
	}
}

// waitForShutdown blocks until a termination signal, then drains
// in-flight work before exiting
func waitForShutdown(cfg *config.Config, cancel context.CancelFunc, server *api.Server, usageRepo *chrepo.UsageRepository, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}

	// Flush buffered usage records before the process dies; losing them
	// means undercounting against the next window check.
	if err := usageRepo.Stop(shutdownCtx); err != nil {
		log.Warnf("Usage repository shutdown: %v", err)
	}

	cancel()

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
