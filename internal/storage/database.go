package storage

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spur-go/internal/config"
	"spur-go/internal/models"
)

// InitDB initializes the database connection pool using the provided configuration.
func InitDB(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(BuildDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	return Open(dialector, cfg, logLevel)
}

// Open connects through an arbitrary dialector and applies the pool settings.
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  GormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// BuildDSN renders the key=value connection string understood by pgx.
func BuildDSN(cfg config.DatabaseConfig) string {
	var dsnParts []string
	dsnParts = append(dsnParts, fmt.Sprintf("host=%s", cfg.Host))
	dsnParts = append(dsnParts, fmt.Sprintf("port=%d", cfg.Port))
	dsnParts = append(dsnParts, fmt.Sprintf("user=%s", cfg.User))
	dsnParts = append(dsnParts, fmt.Sprintf("dbname=%s", cfg.DBName))

	if cfg.Password != "" {
		dsnParts = append(dsnParts, fmt.Sprintf("password=%s", cfg.Password))
	}

	dsnParts = append(dsnParts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))

	return strings.Join(dsnParts, " ")
}

// GormLogLevel maps the application's LOG_LEVEL onto gorm's SQL logger levels.
func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

// rootPostIndex keeps the reply tree single-rooted: at most one post may have
// a NULL parent. gorm tags cannot express a partial expression index.
const rootPostIndex = `CREATE UNIQUE INDEX IF NOT EXISTS post_single_root ON posts ((parent_id IS NULL)) WHERE parent_id IS NULL`

// AutoMigrateTables runs GORM's auto-migration feature for all defined models.
func AutoMigrateTables(db *gorm.DB) error {
	log.Println("Migrating database schema...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Post{},
	)
	if err != nil {
		log.Printf("Database migration failed: %v", err)
		return fmt.Errorf("database migration failed: %w", err)
	}
	if err := db.Exec(rootPostIndex).Error; err != nil {
		return fmt.Errorf("creating root post index: %w", err)
	}
	log.Println("Database migration complete.")
	return nil
}
