package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// Fleet tables live in PostgreSQL
	PostgresDSN          string
	PostgresMaxOpenConns int
	PostgresMaxIdleConns int

	ReportQueryTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	timeout, err := time.ParseDuration(getEnv("REPORT_QUERY_TIMEOUT", "30s"))
	if err != nil {
		return nil, err
	}
	maxOpen, err := strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "20"))
	if err != nil {
		return nil, err
	}
	maxIdle, err := strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "secret"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:               getEnv("DB_NAME", "go-fleet"),
		SkipAuth:             getEnv("SKIP_AUTH", "false") == "true",
		Environment:          getEnv("ENVIRONMENT", "development"),
		AppId:                getEnv("APP_ID", "go-fleet"),
		PostgresDSN:          getEnv("POSTGRES_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=fleet sslmode=disable"),
		PostgresMaxOpenConns: maxOpen,
		PostgresMaxIdleConns: maxIdle,
		ReportQueryTimeout:   timeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
