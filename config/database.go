package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the database named by DB_DRIVER (mysql by default, sqlite for
// local runs) and stores it in DB.
func InitDB(s *Settings) error {
	var err error

	dialector, err := dialectorFromEnv()
	if err != nil {
		return err
	}

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	debugSQL := strings.ToLower(os.Getenv("DEBUG_SQL"))
	logLevel := gormlogger.Info
	if s.IsProduction() && debugSQL != "true" {
		logLevel = gormlogger.Warn
	}

	cfg := &gorm.Config{
		Logger: gormlogger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			gormlogger.Config{LogLevel: logLevel},
		),
	}

	DB, err = gorm.Open(dialector, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	Logger().Infow("database connected", "driver", dialector.Name())
	return nil
}

func dialectorFromEnv() (gorm.Dialector, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	switch driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USERNAME"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_DATABASE"),
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		path := os.Getenv("DB_DATABASE")
		if path == "" {
			path = "thesis.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
