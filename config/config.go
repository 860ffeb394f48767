package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RabbitURL string
	RedisAddr string

	JWTSecret       string
	SlackWebhookURL string

	// IANA zone used to render start times in reminder messages.
	ReminderTimezone string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "reservation_db"),
		RabbitURL:        os.Getenv("RABBITMQ_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SlackWebhookURL:  os.Getenv("SLACK_WEBHOOK_URL"),
		ReminderTimezone: getEnv("REMINDER_TZ", "Asia/Seoul"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	return cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
