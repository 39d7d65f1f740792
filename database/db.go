package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookmark_manager/config"
	"bookmark_manager/models"
)

var DB *gorm.DB

// Connect opens the postgres connection with bounded retries. TranslateError
// is on so a unique-index violation surfaces as gorm.ErrDuplicatedKey
// regardless of driver, which the submission workflow relies on when two
// users race to create the same bookmark.
func Connect(cfg *config.Config) {
	dsn := cfg.DSN()

	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		zap.S().Warnf("failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Second * 3)
	}

	if err != nil {
		zap.S().Fatalf("failed to connect to database after %d attempts: %v", maxRetries, err)
	}

	zap.S().Info("connected to database")

	if cfg.MigrationsPath != "" {
		if err := Migrate(cfg); err != nil {
			zap.S().Fatalf("failed to run migrations: %v", err)
		}
		zap.S().Info("database migrations applied")
		return
	}

	if err := AutoMigrate(DB); err != nil {
		zap.S().Fatalf("failed to migrate database: %v", err)
	}
	zap.S().Info("database migration completed")
}

// AutoMigrate creates the schema from the models. Production deployments use
// the SQL migrations instead; this path serves tests and dev setups.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Bookmark{},
		&models.BookmarkInstance{},
		&models.Tag{},
		&models.Tagging{},
	)
}
