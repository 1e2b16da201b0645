// Command constraintwatch runs the collection pipeline, theme lifecycle,
// alert triage, daily digest, and read-only HTTP API as one process.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/constraintwatch/constraintwatch/pkg/api"
	"github.com/constraintwatch/constraintwatch/pkg/config"
	"github.com/constraintwatch/constraintwatch/pkg/database"
	"github.com/constraintwatch/constraintwatch/pkg/digest"
	"github.com/constraintwatch/constraintwatch/pkg/entitylink"
	"github.com/constraintwatch/constraintwatch/pkg/fetch"
	"github.com/constraintwatch/constraintwatch/pkg/lang"
	"github.com/constraintwatch/constraintwatch/pkg/llm"
	"github.com/constraintwatch/constraintwatch/pkg/masking"
	"github.com/constraintwatch/constraintwatch/pkg/pipeline"
	"github.com/constraintwatch/constraintwatch/pkg/schedule"
	"github.com/constraintwatch/constraintwatch/pkg/telegram"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	httpPort := flag.String("http-port", getEnv("HTTP_PORT", "8080"), "Read-only API port")
	digestCron := flag.String("digest-cron", getEnv("DIGEST_CRON", "0 13 * * *"), "Cron spec for the daily digest job")
	runOnce := flag.Bool("run-all-sources-once", false, "Prime the system by collecting every confirmed source once, then exit")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("no .env file at %s, using existing environment", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}
	stats := cfg.Stats()
	slog.Info("configuration loaded", "sources", stats.Sources, "seed_entities", stats.SeedEntities,
		"constraint_layers", stats.ConstraintLayers, "event_types", stats.EventTypes)

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to load database config: %v", err)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to postgres")

	llmClient, err := llm.NewClient(ctx, cfg.LLM.ToClientConfig())
	if err != nil {
		log.Fatalf("failed to connect to llm sidecar: %v", err)
	}
	defer llmClient.Close()

	translator := lang.NewTranslator(llmClient)

	index := entitylink.NewIndex()
	if err := index.Rebuild(ctx, dbClient.Client); err != nil {
		log.Fatalf("failed to build entity alias index: %v", err)
	}

	telegramSvc := telegram.NewService(telegram.Config{
		BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	})

	masker := masking.NewService()

	fetchDispatcher := fetch.NewDispatcher(dbClient.Client, fetch.Config{
		SerperAPIKey:       os.Getenv("SERPER_API_KEY"),
		RequestsPerSecond:  getEnvFloat("HTTP_RATE_LIMIT_PER_DOMAIN", 1),
		HTTPTimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 20),
		QueryCursorPath:    getEnv("QUERY_CURSOR_PATH", "data/query_cursors.json"),
	})

	orchestrator := pipeline.NewOrchestrator(dbClient.Client, llmClient, translator, index, telegramSvc, masker)

	scheduler := schedule.NewScheduler(dbClient.Client, fetchDispatcher, func(ctx context.Context) error {
		return digest.RunDaily(ctx, dbClient.Client, telegramSvc, time.Now())
	}, *digestCron)

	if *runOnce {
		if err := scheduler.RunAllSourcesOnce(ctx); err != nil {
			log.Fatalf("run-all-sources-once failed: %v", err)
		}
		return
	}

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	go orchestrator.Run(ctx)

	apiServer := api.NewServer(dbClient.Client, dbClient)
	go func() {
		slog.Info("read-only api listening", "port", *httpPort)
		if err := apiServer.Start(":" + *httpPort); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}
