package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deedflow/internal/common/config"
	"deedflow/internal/common/logger"
	"deedflow/internal/llm"
	"deedflow/internal/notify"
	"deedflow/internal/pandadoc"
	"deedflow/internal/pdf"
	"deedflow/internal/server"
	"deedflow/internal/store"
	"deedflow/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting service", map[string]interface{}{
		"service":     cfg.App.Name,
		"environment": cfg.App.Environment,
		"port":        cfg.Server.Port,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mailer notify.Mailer
	if cfg.Email.Enabled {
		sesMailer, err := notify.NewSESMailer(ctx, cfg.Email.AWSRegion, cfg.Email.FromEmail, log)
		if err != nil {
			log.WithError(err).Error("failed to initialize SES mailer", nil)
			os.Exit(1)
		}
		mailer = sesMailer
	} else {
		mailer = notify.NewLogMailer(log)
	}

	var contracts store.ContractStore
	if cfg.Redis.Enabled {
		redisStore, err := store.NewRedisStore(ctx, cfg.Redis, log)
		if err != nil {
			log.WithError(err).Error("failed to connect to redis", nil)
			os.Exit(1)
		}
		defer redisStore.Close()
		contracts = redisStore
	} else {
		log.Warn("redis disabled, contract records are in-memory only", nil)
		contracts = store.NewMemoryStore()
	}

	srv := server.New(cfg, log, server.Deps{
		Streamer:   llm.NewClient(cfg.Anthropic, log),
		Renderer:   pdf.NewAssembler(pandadoc.FieldTags{}),
		Dispatcher: pandadoc.NewClient(cfg.PandaDoc, log),
		Events:     webhook.NewRouter(mailer, log),
		Mailer:     mailer,
		Contracts:  contracts,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed", nil)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed", nil)
	}
	log.Info("service stopped", nil)
}
