// cmd/chat-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"youthunion-chat/internal/activitycache"
	"youthunion-chat/internal/api"
	"youthunion-chat/internal/app"
	"youthunion-chat/internal/common/camunda"
	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/logger"
	"youthunion-chat/internal/common/observability"

	// AI/ML Workers (2)
	aq "youthunion-chat/internal/workers/ai-conversation/answer-question"
	cq "youthunion-chat/internal/workers/ai-conversation/classify-question"
)

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting chat server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("chat pipeline init failed", zap.Error(err))
	}
	defer application.Close()

	// --- Activity cache ---
	if err := application.Cache.Warm(ctx); err != nil {
		zapLog.Warn("activity cache warm-up failed, serving until the next refresh", zap.Error(err))
	}
	refresher := activitycache.NewRefresher(
		application.Cache,
		time.Duration(cfg.Cache.RefreshIntervalMinutes)*time.Minute,
		config.GetDuration(cfg.DataAPI.Timeout)*time.Duration(cfg.DataAPI.MaxRetries+1),
		log,
	)
	go refresher.Run(ctx)

	// --- HTTP API ---
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	deps := api.Dependencies{
		Asker:          application.Router,
		Recorder:       obs,
		Intents:        application.Lexicon,
		Cache:          application.Cache,
		Logger:         log,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	}
	if application.Transcripts != nil {
		deps.History = application.Transcripts
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      api.SetupRouter(deps),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Zeebe workers ---
	var zeebe *camunda.Client
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		if config.IsWorkerEnabled(cfg, aq.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, aq.TaskType)
			handler := aq.NewHandler(
				&aq.Config{Timeout: config.GetDuration(wcfg.Timeout), MaxMessageLength: aq.LoadConfig().MaxMessageLength},
				application.Router,
				obs,
				&answerQuestionLoggerAdapter{log},
			)
			workers = append(workers, camunda.StartWorker(zeebe.GetClient(), aq.TaskType,
				wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, log))
		}

		if config.IsWorkerEnabled(cfg, cq.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, cq.TaskType)
			handler := cq.NewHandler(cq.LoadConfig(), application.Analyzer, &classifyQuestionLoggerAdapter{log})
			workers = append(workers, camunda.StartWorker(zeebe.GetClient(), cq.TaskType,
				wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, log))
		}
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	stop()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Chat server stopped gracefully")
}

// Logger adapters for workers that have their own Logger interfaces
type answerQuestionLoggerAdapter struct {
	logger.Logger
}

func (a *answerQuestionLoggerAdapter) With(fields map[string]interface{}) aq.Logger {
	return &answerQuestionLoggerAdapter{a.Logger.With(fields)}
}

type classifyQuestionLoggerAdapter struct {
	logger.Logger
}

func (a *classifyQuestionLoggerAdapter) With(fields map[string]interface{}) cq.Logger {
	return &classifyQuestionLoggerAdapter{a.Logger.With(fields)}
}
