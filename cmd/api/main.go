package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"skillscreen/resume-screener/internal/config"
	"skillscreen/resume-screener/internal/handlers"
	"skillscreen/resume-screener/internal/logger"
	"skillscreen/resume-screener/internal/repositories"
	"skillscreen/resume-screener/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	screeningRepo := repositories.NewScreeningRepository(db)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	extractor := services.NewDocumentExtractor(cfg.Storage.MaxFileSize)

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbedModel,
		cfg.Worker.RetryMaxAttempts,
		cfg.Worker.RetryInitialDelay,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini client", zap.Error(err))
	}

	index, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize Qdrant client", zap.Error(err))
	}
	if err := index.InitCollection(); err != nil {
		zlog.Fatal("failed to initialize Qdrant collection", zap.Error(err))
	}

	fuser := services.NewScoreFuser(cfg.Scoring.LLMWeight, cfg.Scoring.SimilarityWeight)

	pipeline := services.NewPipeline(
		extractor,
		geminiService,
		index,
		fuser,
		cfg.Worker.Concurrency,
		cfg.Gemini.RequestTimeout,
		zlog,
	)

	processor := services.NewScreeningProcessor(screeningRepo, docRepo, pipeline, zlog)

	exportService := services.NewExportService()

	// Initialize worker
	worker := services.NewWorker(screeningRepo, processor, cfg.Worker.Concurrency, zlog)
	worker.Start(context.Background())

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, cfg.Storage.MaxFileSize)
	screeningHandler := handlers.NewScreeningHandler(screeningRepo, docRepo, index, worker, zlog)
	exportHandler := handlers.NewExportHandler(screeningRepo, exportService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestLogger(zlog))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/screenings", screeningHandler.HandleCreate)
	api.Get("/screenings", screeningHandler.HandleList)
	api.Get("/screenings/:id", screeningHandler.HandleGet)
	api.Delete("/screenings/:id", screeningHandler.HandleDelete)
	api.Get("/screenings/:id/export", exportHandler.HandleExport)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/screenings",
				"GET /api/v1/screenings",
				"GET /api/v1/screenings/:id",
				"DELETE /api/v1/screenings/:id",
				"GET /api/v1/screenings/:id/export",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func requestLogger(zlog *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		zlog.Info("request",
			zap.Int("status", c.Response().StatusCode()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Duration("latency", time.Since(start)))
		return err
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
