package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"pettracker/internal/adapters/mail/smtpmail"
	"pettracker/internal/adapters/queue/redisq"
	pg "pettracker/internal/adapters/storage/postgres"
	"pettracker/internal/config"
	"pettracker/internal/platform/logger"
	"pettracker/internal/worker"
)

// El worker necesita Postgres y Redis sí o sí: sin base no hay task
// records y sin Redis no hay cola que consumir.
func main() {
	cfg := config.Load()
	log := logger.NewFromEnv().With(map[string]any{"component": "worker"})

	if cfg.DatabaseURL == "" || cfg.RedisURL == "" {
		log.Error("DATABASE_URL and REDIS_URL are required", nil)
		os.Exit(1)
	}

	db, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres open failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	ropts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("redis url invalid", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	client := redis.NewClient(ropts)
	defer client.Close()

	sender := smtpmail.New(smtpmail.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.MailFrom,
		Password: cfg.MailPassword,
	})

	w := worker.New(
		pg.NewEventsRepo(db),
		pg.NewTaskRecordRepo(db),
		sender,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q := redisq.New(client, cfg.QueueKey, log)

	log.Info("worker consuming", map[string]any{
		"queue": cfg.QueueKey,
		"poll":  cfg.QueuePoll.String(),
	})
	if err := q.Consume(ctx, cfg.QueuePoll, w); err != nil && err != context.Canceled {
		log.Error("consumer stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("worker stopped", nil)
}
