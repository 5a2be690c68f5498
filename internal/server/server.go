package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/config"
	"gorm.io/gorm"
)

func New(db *gorm.DB, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
		AppName:   "dropux-admin",
	})

	SetupRoutes(app, cfg)

	return app
}
