package main

import (
	"time"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/config"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/marketplace"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/server"
	"github.com/jordymora1978/dropux-admin/internal/snapshot"
	"github.com/jordymora1978/dropux-admin/internal/user"
	"github.com/jordymora1978/dropux-admin/internal/utils"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Info("✅ JWT secret validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed: ", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}

	// ========== SNAPSHOT ARCHIVE ==========
	var archiver *snapshot.Archiver
	if cfg.SnapshotToS3 {
		if cfg.S3Bucket != "" && cfg.S3Region != "" {
			archiver, err = snapshot.NewS3(cfg.S3Bucket, cfg.S3Region)
			if err != nil {
				log.Warnf("⚠️  S3 initialization failed: %v", err)
			}
		} else {
			log.Warn("⚠️  SNAPSHOT_TO_S3=true but S3_BUCKET or S3_REGION not configured")
		}
	}
	if archiver == nil {
		archiver, err = snapshot.NewLocal(cfg.SnapshotDir)
		if err != nil {
			log.Fatal("❌ Failed to initialize snapshot directory: ", err)
		}
	}
	log.Infof("💾 Snapshot mode: %s", archiver.Mode())

	cat := catalog.Default()
	role.Configure(cat, archiver)
	marketplace.Configure(marketplace.Settings{
		RedirectURI:    cfg.MLRedirectURI,
		TokenURL:       cfg.MLTokenURL,
		FrontendOrigin: firstOrigin(cfg.FrontendOrigins),
	})

	// ========== SEED DEFAULT DATA ==========
	if err := role.SeedDefaultRoles(db, cat); err != nil {
		log.Fatal("❌ Failed to seed roles: ", err)
	}
	log.Info("✅ Default roles seeded")

	created, err := user.EnsureSuperAdmin(db, cfg.SuperAdminEmail, cfg.SuperAdminPassword)
	if err != nil {
		log.Warnf("⚠️  Failed to create bootstrap super admin: %v", err)
	} else if created {
		log.Infof("👑 Bootstrap super admin %s created", cfg.SuperAdminEmail)
	}

	// ========== BACKGROUND JOBS ==========
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			result := database.DB.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
			if result.RowsAffected > 0 {
				log.Infof("🧹 Cleaned up %d expired refresh tokens", result.RowsAffected)
			}

			expired, err := marketplace.ExpirePending(database.DB, 24*time.Hour)
			if err != nil {
				log.Warnf("⚠️  Failed to expire pending stores: %v", err)
			} else if expired > 0 {
				log.Infof("🧹 Expired %d abandoned store connections", expired)
			}
		}
	}()

	// ========== START SERVER ==========
	app := server.New(db, cfg)

	log.Infof("🚀 Dropux admin starting on %s", cfg.ServerAddr)
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server: ", err)
	}
}

func firstOrigin(origins []string) string {
	if len(origins) == 0 {
		return ""
	}
	return origins[0]
}
