package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"pettracker/internal/adapters/auth/jwtauth"
	"pettracker/internal/adapters/mail/smtpmail"
	"pettracker/internal/adapters/queue/redisq"
	pg "pettracker/internal/adapters/storage/postgres"
	"pettracker/internal/config"
	"pettracker/internal/platform/logger"
	"pettracker/internal/router"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv().With(map[string]any{"component": "api"})

	tokens := jwtauth.New(jwtauth.Options{
		Secret:     cfg.SecretKey,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		ConfirmTTL: cfg.ConfirmTokenTTL,
	})

	opts := router.Options{
		Issuer:   tokens,
		Verifier: tokens,
	}

	if cfg.DatabaseURL != "" {
		db, err := pg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pg.Apply(ctx, db); err != nil {
			cancel()
			log.Error("migrations failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		cancel()

		opts.DB = db
	} else {
		log.Warn("no DATABASE_URL, using in-memory repos", nil)
	}

	if cfg.RedisURL != "" {
		ropts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("redis url invalid", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		client := redis.NewClient(ropts)
		defer client.Close()

		opts.Scheduler = redisq.New(client, cfg.QueueKey, log)
	} else {
		log.Warn("no REDIS_URL, reminders will not be queued", nil)
	}

	if cfg.SMTPHost != "" {
		opts.Mailer = smtpmail.New(smtpmail.Options{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.MailFrom,
			Password: cfg.MailPassword,
		})
	} else {
		log.Warn("no MAIL_SERVER, outgoing mail disabled", nil)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
