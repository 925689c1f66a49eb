package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del proceso.
// Se construye una sola vez en main y se pasa por referencia
// a los constructores (nada de globals mutables).
type Config struct {
	Port string

	// Postgres. Vacío => repos in-memory (modo dev).
	DatabaseURL string

	// Redis para la cola de jobs diferidos. Vacío => scheduler no-op (modo dev).
	RedisURL string
	QueueKey string
	// Intervalo de polling del consumer.
	QueuePoll time.Duration

	// Firmas JWT.
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ConfirmTokenTTL time.Duration

	// SMTP para correos de confirmación/notificación.
	SMTPHost     string
	SMTPPort     int
	MailFrom     string
	MailPassword string
}

// Load lee variables de entorno (y .env si existe) y arma el Config.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getenvDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisURL:  os.Getenv("REDIS_URL"),
		QueueKey:  getenvDefault("QUEUE_KEY", "pettracker:notifications"),
		QueuePoll: durationEnv("QUEUE_POLL", 5*time.Second),

		SecretKey:       getenvDefault("SECRET_KEY", "dev-secret"),
		AccessTokenTTL:  durationEnv("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ConfirmTokenTTL: durationEnv("CONFIRM_TOKEN_TTL", 24*time.Hour),

		SMTPHost:     os.Getenv("MAIL_SERVER"),
		SMTPPort:     intEnv("MAIL_PORT", 587),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q no es un entero, usando %d: %v", key, v, def, err)
		return def
	}
	return n
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q no es una duración, usando %s: %v", key, v, def, err)
		return def
	}
	return d
}
