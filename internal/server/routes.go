package server

import (
	"strings"
	"time"

	"github.com/jordymora1978/dropux-admin/internal/auth"
	"github.com/jordymora1978/dropux-admin/internal/config"
	"github.com/jordymora1978/dropux-admin/internal/marketplace"
	"github.com/jordymora1978/dropux-admin/internal/middleware"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/search"
	"github.com/jordymora1978/dropux-admin/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

var (
	superAdmin = string(permission.SuperAdmin)
	admin      = string(permission.Admin)
)

func SetupRoutes(app *fiber.App, cfg *config.Config) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.FrontendOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Dropux admin API is running",
		})
	})

	// ==========================================
	// AUTH ROUTES
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.TooManyRequests(c, "Too many login attempts")
		},
	}), auth.LoginHandler)
	authGroup.Post("/refresh", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 5 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return response.TooManyRequests(c, "Too many refresh attempts")
		},
	}), auth.RefreshHandler)
	authGroup.Post("/logout", auth.JWTProtected(), auth.LogoutHandler)
	authGroup.Get("/me", auth.JWTProtected(), auth.MeHandler)

	// ==========================================
	// PAGE PERMISSIONS (Admin and super admin)
	// ==========================================
	adminGroup := app.Group("/admin")
	adminGroup.Use(auth.JWTProtected())

	adminGroup.Get("/role-permissions",
		auth.RoleProtected(superAdmin, admin),
		role.GetRolePermissionsHandler)
	adminGroup.Post("/save-role-permissions",
		auth.RoleProtected(superAdmin, admin),
		role.SaveRolePermissionsHandler)
	adminGroup.Post("/save-restricted-pages",
		auth.RoleProtected(superAdmin),
		role.SaveRestrictedPagesHandler)
	adminGroup.Get("/roles",
		auth.RoleProtected(superAdmin, admin),
		role.ListRolesHandler)
	adminGroup.Get("/pages",
		auth.RoleProtected(superAdmin, admin),
		role.AvailablePagesHandler)

	// ==========================================
	// USER MANAGEMENT
	// ==========================================
	userGroup := adminGroup.Group("/users", auth.RoleProtected(superAdmin, admin))
	userGroup.Post("/", user.CreateUserHandler)
	userGroup.Get("/", user.ListUsersHandler)
	userGroup.Get("/search", search.SearchUsersHandler)
	userGroup.Get("/:id", user.GetUserHandler)
	userGroup.Put("/:id/status", user.UpdateStatusHandler)
	userGroup.Put("/:id/role", user.UpdateRoleHandler)
	userGroup.Delete("/:id", user.DeleteUserHandler)

	adminGroup.Get("/stores/search",
		auth.RoleProtected(superAdmin, admin),
		search.SearchStoresHandler)

	// ==========================================
	// MARKETPLACE STORES
	// ==========================================
	mlGroup := app.Group("/api/ml")
	mlGroup.Get("/callback", marketplace.CallbackHandler)

	mlGroup.Use(auth.JWTProtected(), auth.RoleProtected(permission.RoleNames()...))
	mlGroup.Get("/sites", marketplace.SitesHandler)
	mlGroup.Post("/connect-store",
		middleware.PageProtected("stores"),
		marketplace.ConnectStoreHandler)
	mlGroup.Get("/stores",
		middleware.PageProtected("stores"),
		marketplace.ListStoresHandler)
	mlGroup.Delete("/stores/:id",
		middleware.PageProtected("stores"),
		marketplace.DeleteStoreHandler)
	mlGroup.Post("/stores/:id/reconnect",
		middleware.PageProtected("stores"),
		marketplace.ReconnectStoreHandler)
	mlGroup.Get("/stores/:id/history",
		middleware.PageProtected("stores"),
		marketplace.StoreHistoryHandler)
}
