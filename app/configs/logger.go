package configs

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func SetupLogger(env ENV) {
	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil || env.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if logFormat(env) == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// logFormat honours LOG_FORMAT and otherwise uses the console writer only in
// development.
func logFormat(env ENV) string {
	switch env.LogFormat {
	case "json", "console":
		return env.LogFormat
	}
	if env.APP_ENV == "" || env.APP_ENV == "development" {
		return "console"
	}
	return "json"
}
