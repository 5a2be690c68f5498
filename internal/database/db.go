package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/jordymora1978/dropux-admin/internal/config"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db

	return db, nil
}

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Role{},
		&models.RolePermission{},
		&models.RestrictedPage{},
		&models.User{},
		&models.RefreshToken{},
		&models.MarketplaceStore{},
		&models.StoreStatusHistory{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.WithModule("database").Info("Database migrated successfully!")
	return nil
}
