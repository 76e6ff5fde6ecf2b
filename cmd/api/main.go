package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/api/handlers"
	"github.com/helix-agent/backend/internal/cache/redis"
	"github.com/helix-agent/backend/internal/evaluation"
	"github.com/helix-agent/backend/internal/ingestion"
	"github.com/helix-agent/backend/internal/llm"
	"github.com/helix-agent/backend/internal/loader"
	"github.com/helix-agent/backend/internal/metrics"
	"github.com/helix-agent/backend/internal/middleware/ratelimit"
	"github.com/helix-agent/backend/internal/middleware/security"
	"github.com/helix-agent/backend/internal/middleware/validation"
	"github.com/helix-agent/backend/internal/pipeline"
	"github.com/helix-agent/backend/internal/retriever"
	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/internal/storage/sqlite"
	"github.com/helix-agent/backend/internal/vector"
	"github.com/helix-agent/backend/internal/vector/memory"
	"github.com/helix-agent/backend/internal/vector/milvus"
	"github.com/helix-agent/backend/pkg/config"
	appLogger "github.com/helix-agent/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Helix HR Intelligence API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	llmClient := llm.SelectClient(&cfg.LLM)
	appLogger.Info("Generation provider selected", zap.String("provider", llmClient.Name()))

	var cacheClient *redis.Client
	embedder := llmClient
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
			embedder = redis.NewCachingEmbedder(llmClient, cacheClient)
		}
	}

	var index vector.Index
	switch cfg.Vector.Backend {
	case "milvus":
		milvusIndex, err := milvus.NewIndex(
			cfg.Milvus.Endpoint,
			cfg.Milvus.CollectionName,
			cfg.Milvus.VectorDim,
			embedder,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Milvus index", zap.Error(err))
		}
		defer milvusIndex.Close()

		if err := milvusIndex.EnsureCollection(context.Background()); err != nil {
			appLogger.Fatal("Failed to ensure Milvus collection", zap.Error(err))
		}
		index = milvusIndex
	default:
		index = memory.NewIndex(embedder)
	}

	employees := loadEmployees(cfg)
	leaves := loadLeaves(cfg)
	attendance := loadAttendance(cfg)

	retr := retriever.New(employees, leaves, attendance, index, embedder, referenceClock(cfg))
	queryPipeline := pipeline.New(retr, llmClient, cfg.Vector.TopK)
	processor := ingestion.NewProcessor(sqliteClient, index, embedder)
	evaluator := evaluation.New(queryPipeline)

	indexPolicies(cfg, index, processor)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	rateLimiter := ratelimit.New(ratelimit.Config{})
	defer rateLimiter.Stop()

	queryHandler := handlers.NewQueryHandler(queryPipeline, sqliteClient, cacheClient)
	employeeHandler := handlers.NewEmployeeHandler(retr)
	documentHandler := handlers.NewDocumentHandler(processor)
	feedbackHandler := handlers.NewFeedbackHandler(sqliteClient)
	evaluationHandler := handlers.NewEvaluationHandler(evaluator)
	wsHandler := handlers.NewWebSocketHandler(queryPipeline)

	api := app.Group("/api/v1")
	api.Use(rateLimiter.Middleware())
	api.Use(validation.Middleware(validation.Config{
		MaxDocumentSize: cfg.Server.BodyLimit,
	}))

	api.Post("/query", queryHandler.HandleQuery)
	api.Get("/query/history", queryHandler.GetQueryHistory)

	api.Get("/employees", employeeHandler.ListEmployees)
	api.Get("/employees/:id", employeeHandler.GetEmployee)
	api.Get("/employees/:id/tenure", employeeHandler.GetTenure)

	api.Post("/policies", documentHandler.UploadPolicy)
	api.Post("/feedback", feedbackHandler.SubmitFeedback)
	api.Post("/evaluate", evaluationHandler.RunEvaluation)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		count, err := index.Count(c.Context())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
			})
		}
		return c.JSON(fiber.Map{
			"status":         "ready",
			"indexed_chunks": count,
			"employees":      len(employees),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

// Missing data files degrade to empty tables so the service still starts and
// answers pure policy queries.

func loadEmployees(cfg *config.Config) []models.Employee {
	path := filepath.Join(cfg.Data.Dir, cfg.Data.EmployeesFile)
	employees, err := loader.LoadEmployees(path)
	if err != nil {
		appLogger.Warn("Failed to load employees", zap.String("path", path), zap.Error(err))
		return nil
	}
	return employees
}

func loadLeaves(cfg *config.Config) []models.LeaveRecord {
	path := filepath.Join(cfg.Data.Dir, cfg.Data.LeavesFile)
	leaves, err := loader.LoadLeaves(path)
	if err != nil {
		appLogger.Warn("Failed to load leaves", zap.String("path", path), zap.Error(err))
		return nil
	}
	return leaves
}

func loadAttendance(cfg *config.Config) []models.AttendanceRecord {
	path := filepath.Join(cfg.Data.Dir, cfg.Data.AttendanceFile)
	attendance, err := loader.LoadAttendance(path)
	if err != nil {
		appLogger.Warn("Failed to load attendance", zap.String("path", path), zap.Error(err))
		return nil
	}
	return attendance
}

// referenceClock pins tenure arithmetic to a configured date when set;
// otherwise wall-clock time is used.
func referenceClock(cfg *config.Config) func() time.Time {
	if cfg.Data.ReferenceDate == "" {
		return nil
	}
	ref := loader.ParseDate(cfg.Data.ReferenceDate)
	if ref == nil {
		appLogger.Warn("Invalid reference date, using wall clock",
			zap.String("reference_date", cfg.Data.ReferenceDate))
		return nil
	}
	appLogger.Info("Tenure reference date pinned", zap.Time("reference_date", *ref))
	return func() time.Time { return *ref }
}

// indexPolicies seeds the vector index from the configured policy file when
// the index is empty. A populated Milvus collection is left untouched.
func indexPolicies(cfg *config.Config, index vector.Index, processor *ingestion.Processor) {
	count, err := index.Count(context.Background())
	if err != nil {
		appLogger.Warn("Failed to check index size", zap.Error(err))
		return
	}
	if count > 0 {
		appLogger.Info("Vector index already populated", zap.Int("chunks", count))
		return
	}

	path := filepath.Join(cfg.Data.Dir, cfg.Data.PolicyFile)
	if _, err := os.Stat(path); err != nil {
		appLogger.Warn("Policy file not found, starting with empty index", zap.String("path", path))
		return
	}

	chunks, err := processor.IngestFile(context.Background(), path)
	if err != nil {
		appLogger.Warn("Failed to index policy file", zap.String("path", path), zap.Error(err))
		return
	}
	appLogger.Info("Policy file indexed", zap.String("path", path), zap.Int("chunks", chunks))
}
