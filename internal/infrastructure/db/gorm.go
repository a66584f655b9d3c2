package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/client"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/tenant"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
)

// OpenGorm opens the production store. driver is "mysql" or "postgres".
func OpenGorm(driver, dsn, logLevel string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "mysql":
		dial = mysql.Open(dsn)
	case "postgres":
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	return OpenGormWithDialector(dial, LogLevel(logLevel))
}

// OpenGormWithDialector is split out so tests can hand in a sqlmock-backed dialector.
func OpenGormWithDialector(dial gorm.Dialector, level ...logger.LogLevel) (*gorm.DB, error) {
	lvl := logger.Warn
	if len(level) > 0 {
		lvl = level[0]
	}
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(lvl),
		TranslateError:       true,
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// Models lists every table of the schema in dependency order.
func Models() []any {
	return []any{
		&tenant.Tenant{},
		&user.User{},
		&client.Client{},
		&client.Vehicle{},
		&quote.Quote{},
		&quote.Item{},
		&claim.Claim{},
		&claim.Note{},
		&audit.Entry{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
