package configs

import (
	"fmt"
	"net"
	"time"

	"github.com/avast/retry-go/v4"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Dialector picks the gorm dialector for env.DBDriver.
func Dialector(env ENV) (gorm.Dialector, error) {
	switch env.DBDriver {
	case DriverMySQL:
		port := env.DBPort
		if port == "" {
			port = "3306"
		}
		cfg := mysqldriver.NewConfig()
		cfg.User = env.DBUser
		cfg.Passwd = env.DBPassword
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(env.DBHost, port)
		cfg.DBName = env.DBName
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(cfg.FormatDSN()), nil
	case DriverPostgres:
		port := env.DBPort
		if port == "" {
			port = "5432"
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			env.DBHost, port, env.DBUser, env.DBPassword, env.DBName)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(env.DBPath + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
}

func OpenConnection(env ENV) (*gorm.DB, error) {
	dialector, err := Dialector(env)
	if err != nil {
		return nil, err
	}

	gormLogLevel := logger.Silent
	if env.LogLevel == "debug" {
		gormLogLevel = logger.Info
	}

	var db *gorm.DB
	err = retry.Do(
		func() error {
			conn, err := gorm.Open(dialector, &gorm.Config{
				TranslateError: true,
				Logger:         logger.Default.LogMode(gormLogLevel),
			})
			if err != nil {
				return err
			}
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.Ping(); err != nil {
				return err
			}
			db = conn
			return nil
		},
		retry.Attempts(env.DBMaxRetries),
		retry.Delay(env.DBRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Uint("max", env.DBMaxRetries).Str("driver", env.DBDriver).
				Msg("database not reachable, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %w", env.DBMaxRetries, err)
	}

	log.Info().Str("driver", env.DBDriver).Msg("database connected")
	return db, nil
}
