package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	ServerPort string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminSecret string
	JWTSecret   string

	IdentityAdminURL string
	IdentityTimeout  time.Duration

	RateLimitBackend string
	ReadLimitPerMin  int
	WriteLimitPerMin int
	RateLimitWindow  time.Duration

	ProgressStream  string
	ProgressGroup   string
	NumberOfWorkers int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "algoprep"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		ServerPort: getEnv("SERVER_PORT", "3000"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AdminSecret: os.Getenv("ADMIN_SECRET"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		IdentityAdminURL: getEnv("IDENTITY_ADMIN_URL", ""),
		IdentityTimeout:  time.Duration(getEnvAsInt("IDENTITY_TIMEOUT_SECONDS", 5)) * time.Second,

		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		ReadLimitPerMin:  getEnvAsInt("READ_LIMIT_PER_MIN", 60),
		WriteLimitPerMin: getEnvAsInt("WRITE_LIMIT_PER_MIN", 20),
		RateLimitWindow:  time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		ProgressStream:  getEnv("PROGRESS_STREAM", "completion_events"),
		ProgressGroup:   getEnv("PROGRESS_GROUP", "progress_workers"),
		NumberOfWorkers: getEnvAsInt("NUM_OF_WORKERS", 2),
	}

	if cfg.AdminSecret == "" {
		log.Fatal("ADMIN_SECRET must be set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}
