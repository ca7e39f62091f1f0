package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Database struct {
	DB *gorm.DB
}

// Opens the database for driver and registers plugins (the SQL profiler) on it
func NewDatabase(driver, dsn string, logLevel logger.LogLevel, plugins ...gorm.Plugin) (*Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if driver == DriverSQLite {
		// in-memory databases exist per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("failed to register plugin %s: %w", p.Name(), err)
		}
	}

	return &Database{DB: db}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(
		&models.ConfigEntry{},
		&models.User{},
		&models.Product{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (d *Database) Transaction(fn func(*gorm.DB) error) error {
	return d.DB.Transaction(fn)
}

// ParseLogLevel maps a config value to a gorm log level, defaulting to warn
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
