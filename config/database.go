package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const defaultDBPath = "daftar.db"

func init() {
	// Load env from .env
	godotenv.Load()
}

// OpenDatabase opens (and creates, if missing) the sqlite ledger database and
// returns the handle. The handle is passed explicitly into the ledger engine;
// there is no package-level database singleton.
//
// DB_PATH overrides the file location. Tests pass ":memory:" directly.
func OpenDatabase(path string) (*gorm.DB, error) {
	if path == "" {
		path = os.Getenv("DB_PATH")
	}
	if path == "" {
		path = defaultDBPath
	}

	// _busy_timeout makes a second writer wait instead of failing immediately;
	// foreign_keys is off by default in sqlite.
	dsn := path + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), initConfig())
	if err != nil {
		return nil, err
	}

	// A single connection keeps every transaction serialized and is all a
	// single-operator bookkeeping app needs.
	if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxIdleTime(time.Minute)
	}
	return db, nil
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

// Connection log configuration: errors only, plain text.
func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
