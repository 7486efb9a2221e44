package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mdalbakiakon/lms-backend/internal/models"
)

type Config struct {
	DB_HOST         string
	DB_PORT         string
	DB_USER         string
	DB_PASSWORD     string
	DB_NAME         string
	JWT_SECRET      string
	REFRESH_SECRET  string
	RESET_SECRET    string
	RESET_TOKEN_TTL time.Duration
	FRONTEND_URL    string
	SMTP_HOST       string
	SMTP_PORT       string
	SMTP_USER       string
	SMTP_PASSWORD   string
	MAIL_FROM       string
	KAFKA_ADDRESS   string
	ES_URL          string
	ES_USER         string
	ES_PASSWORD     string
	APP_PORT        string
	LOG_LEVEL       string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:         os.Getenv("DB_HOST"),
		DB_PORT:         os.Getenv("DB_PORT"),
		DB_USER:         os.Getenv("DB_USER"),
		DB_PASSWORD:     os.Getenv("DB_PASSWORD"),
		DB_NAME:         os.Getenv("DB_NAME"),
		JWT_SECRET:      os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:  os.Getenv("REFRESH_SECRET"),
		RESET_SECRET:    os.Getenv("RESET_SECRET"),
		RESET_TOKEN_TTL: parseDurationDefault(os.Getenv("RESET_TOKEN_TTL"), 24*time.Hour),
		FRONTEND_URL:    getenvDefault("FRONTEND_URL", "http://localhost:3000"),
		SMTP_HOST:       os.Getenv("SMTP_HOST"),
		SMTP_PORT:       os.Getenv("SMTP_PORT"),
		SMTP_USER:       os.Getenv("SMTP_USER"),
		SMTP_PASSWORD:   os.Getenv("SMTP_PASSWORD"),
		MAIL_FROM:       getenvDefault("MAIL_FROM", "noreply@example.com"),
		KAFKA_ADDRESS:   os.Getenv("KAFKA_ADDRESS"),
		ES_URL:          os.Getenv("ES_URL"),
		ES_USER:         os.Getenv("ES_USER"),
		ES_PASSWORD:     os.Getenv("ES_PASSWORD"),
		APP_PORT:        getenvDefault("APP_PORT", "8080"),
		LOG_LEVEL:       os.Getenv("LOG_LEVEL"),
	}

	return config, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationDefault(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Notice: invalid duration %q, using default %v", s, def)
		return def
	}
	return d
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Course{}, &models.Enrollment{}); err != nil {
		return nil, fmt.Errorf("cannot run migrations: %w", err)
	}
	return db, nil
}
