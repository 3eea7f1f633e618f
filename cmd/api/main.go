package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"sfinx/internal/config"
	"sfinx/internal/db"
	apihttp "sfinx/internal/http"
	"sfinx/internal/llm"
	"sfinx/internal/logger"
	"sfinx/internal/repository"
	"sfinx/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Options{FilePath: cfg.LogFile, Production: cfg.LogProduction})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	script, err := config.LoadScript(cfg.InterviewScriptPath)
	if err != nil {
		zl.Fatal("interview script", zap.Error(err), zap.String("path", cfg.InterviewScriptPath))
	}

	var repos service.InterviewRepositories
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			zl.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			zl.Fatal("db ping", zap.Error(err))
		}
		if err := db.Migrate(ctx, pool); err != nil {
			zl.Fatal("db migrate", zap.Error(err))
		}
		repos = service.InterviewRepositories{
			Interviews:   repository.NewPgInterviewRepository(pool),
			Messages:     repository.NewPgMessageRepository(pool),
			Observations: repository.NewPgObservationRepository(pool),
			Archive:      repository.NewPgArchiveRepository(pool),
		}
	} else {
		zl.Warn("database not configured, interviews are not persisted")
	}

	store := service.NewMemorySessionStore(cfg.SessionTTL())
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			zl.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			store = service.NewRedisSessionStore(redisClient, cfg.SessionTTL())
		}
		cancel()
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, zl,
		llm.WithTimeout(cfg.LLMTimeout()),
		llm.WithJSONResponse(),
		llm.WithTemperature(0),
	)
	judge := service.NewJudgeService(llmClient, zl)
	interviewSvc := service.NewInterviewService(zl, store, judge, service.InterviewSettings{
		Script:            script,
		Timebox:           cfg.Timebox(),
		UnproductiveLimit: cfg.InterviewUnproductiveLimit,
	}, repos)

	router := apihttp.NewRouter(zl, apihttp.NewInterviewHandler(zl, interviewSvc))

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	zl.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Duration("timebox", cfg.Timebox()),
		zap.String("interviewer", script.InterviewerName),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zl.Fatal("server error", zap.Error(err))
	}
}
