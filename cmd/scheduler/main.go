package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/internal/scheduler"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
)

// main runs the notification email worker without the HTTP API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.IsSMTPEnabled() {
		panic("scheduler requires SMTP_HOST")
	}

	worker, err := scheduler.NewWorker(cfg, sender.NewSMTPSender(cfg), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}
