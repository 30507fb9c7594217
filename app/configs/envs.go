package configs

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type ENV struct {
	DBDriver     string
	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       string
	DBPath       string
	DBMaxRetries uint
	DBRetryDelay time.Duration
	AssetDir     string
	LogLevel     string
	LogFormat    string
	CancelWindow time.Duration
	APP_ENV      string
}

func LoadEnv() ENV {

	// a missing .env is fine; the process environment still applies
	_ = godotenv.Load(".env")

	retries := getEnvInt("DB_MAX_RETRIES", 10)
	if retries < 1 {
		retries = 1
	}

	return ENV{
		DBDriver:     getEnv("DB_DRIVER", DriverMySQL),
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       getEnv("DB_NAME", "catalog"),
		DBPort:       os.Getenv("DB_PORT"),
		DBPath:       getEnv("DB_PATH", "catalog.db"),
		DBMaxRetries: uint(retries),
		DBRetryDelay: getEnvDuration("DB_RETRY_DELAY", 5*time.Second),
		AssetDir:     getEnv("ASSET_DIR", "storage/assets"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
		CancelWindow: getEnvDuration("CANCEL_WINDOW", 0),
		APP_ENV:      getEnv("APP_ENV", "development"),
	}

}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
