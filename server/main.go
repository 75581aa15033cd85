package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/namngocngo2210/veo3/internal/generator"
	"github.com/namngocngo2210/veo3/internal/http/handlers"
	"github.com/namngocngo2210/veo3/internal/http/routes"
	"github.com/namngocngo2210/veo3/internal/license"
	"github.com/namngocngo2210/veo3/internal/media"
	"github.com/namngocngo2210/veo3/internal/queue"
	"github.com/namngocngo2210/veo3/internal/storage"
	"github.com/namngocngo2210/veo3/internal/veo"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Initialize services
	store, err := storage.NewService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer store.Close()

	veoClient := veo.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout, logger)
	gen := generator.New(veoClient, store, cfg.Generation, logger)
	registry := generator.NewCancelRegistry()
	preparer := media.NewPreparer(cfg.Media)

	var checker *license.Checker
	if cfg.License.BaseURL != "" {
		checker = license.NewChecker(
			license.NewClient(cfg.License.BaseURL, 0),
			cfg.License.DeviceID,
			cfg.License.CheckInterval,
			logger,
		)
		checker.Start(appCtx)
	}

	q, err := queue.NewService(cfg, gen, store, registry, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service, batches run in-process", zap.Error(err))
		q = nil
	} else {
		defer q.Close()
		for i := 0; i < cfg.RabbitMQ.Workers; i++ {
			if err := q.StartWorker(appCtx, i); err != nil {
				logger.Fatal("Failed to start worker", zap.Int("worker_id", i), zap.Error(err))
			}
		}
	}

	// Initialize handlers
	handler := handlers.NewGenerationHandler(gen, store, q, registry, checker, preparer, veoClient, logger, cfg)

	router := routes.NewRouter(handler, checker, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	appCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
