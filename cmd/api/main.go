package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"server/internal/agents"
	"server/internal/brief"
	"server/internal/convstore"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/orchestrator"
	"server/internal/products"
	"server/internal/providers/chat"
	"server/internal/providers/image"
	"server/internal/storage"
	"server/internal/tasks"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	// Conversation store: Postgres when configured, in-memory otherwise.
	var store convstore.Store = convstore.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		store = convstore.NewPostgresStore(pool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, conversations kept in memory")
	}

	completer := buildCompleter(cfg, logger)
	generator := buildImageGenerator(ctx, cfg, logger)
	blobs := buildBlobStore(ctx, cfg, logger)

	composer, err := agents.NewTextComposer(completer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build text composer")
	}
	prompter, err := agents.NewImagePrompter(completer, cfg.PromptBudget)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image prompter")
	}
	reviewer, err := agents.NewReviewer(completer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build reviewer")
	}
	researcher, err := agents.NewResearcher(completer, products.NewMemorySearcher(nil))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build researcher")
	}

	manager, err := tasks.NewManager(tasks.Deps{
		Composer: composer,
		Prompter: prompter,
		Reviewer: reviewer,
		Images:   generator,
		Blobs:    blobs,
		ImageOptions: image.Options{
			Size:    cfg.ImageSize,
			Quality: cfg.ImageQuality,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build task manager")
	}

	reaper, err := tasks.NewReaper(manager, cfg.ReaperSchedule, cfg.TaskRetention, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build task reaper")
	}
	reaper.Start()
	defer reaper.Stop()

	roster, err := agents.NewRoster(completer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build agent roster")
	}
	workflow, err := orchestrator.NewRouter(orchestrator.Options{
		Roster:       roster,
		Store:        store,
		Logger:       logger,
		MaxUserTurns: cfg.MaxUserTurns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build workflow router")
	}

	parser, err := brief.NewParser(completer, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build brief parser")
	}

	app := &handlers.App{
		Logger:            logger,
		Briefs:            parser,
		Tasks:             manager,
		Workflow:          workflow,
		Research:          researcher,
		Blobs:             blobs,
		HeartbeatInterval: cfg.HeartbeatInterval,
		MaxHeartbeats:     cfg.MaxHeartbeats,
	}

	routerOpts := httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimit:       cfg.RateLimitPerMin,
		RateLimitWindow: time.Minute,
	}
	if cfg.StorageBackend != "s3" {
		routerOpts.StaticDir = cfg.StorageDir
	}
	router := httpapi.NewRouter(app, routerOpts)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildCompleter(cfg *infra.Config, logger infra.Logger) chat.Completer {
	switch cfg.ChatProvider {
	case "openai":
		completer, err := chat.NewOpenAICompleter(chat.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build openai completer")
		}
		return completer
	default:
		logger.Warn().Str("provider", cfg.ChatProvider).Msg("using static chat completer")
		return chat.NewStaticCompleter()
	}
}

func buildImageGenerator(ctx context.Context, cfg *infra.Config, logger infra.Logger) image.Generator {
	switch cfg.ImageProvider {
	case "gemini":
		generator, err := image.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiImageModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build gemini image generator")
		}
		return generator
	default:
		logger.Warn().Str("provider", cfg.ImageProvider).Msg("using static image generator")
		return image.NewStaticGenerator()
	}
}

func buildBlobStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) storage.BlobStore {
	switch cfg.StorageBackend {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load aws config")
		}
		store, err := storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build s3 store")
		}
		return store
	default:
		store, err := storage.NewFileStore(cfg.StorageDir, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build file store")
		}
		return store
	}
}
