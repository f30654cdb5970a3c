// Command audit-consumer drains the audit queue into logs/audit.log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/musicuration-desk/internal/config"
	"github.com/iliyamo/musicuration-desk/internal/logging"
	"github.com/iliyamo/musicuration-desk/internal/queue"
)

func main() {
	_ = godotenv.Load()
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})

	if p := os.Getenv("AUDIT_LOG_PATH"); p != "" {
		queue.AuditLogPath = p
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := config.RabbitURL()
	logging.Info().Str("queue", queue.AuditQueue).Str("file", queue.AuditLogPath).Msg("audit-consumer: starting")
	if err := queue.StartAuditConsumer(ctx, url); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("audit-consumer: stopped")
	}
	logging.Info().Msg("audit-consumer: stopped")
}
