package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/jordymora1978/dropux-admin/internal/utils"
)

// JWTProtected authenticates the bearer token and stores user_id and role
// in the request locals.
func JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Invalid token format", nil)
		}

		userID, roleName, err := utils.ParseJWT(tokenParts[1])
		if err != nil {
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
		}

		c.Locals("user_id", userID)
		c.Locals("role", roleName)
		return c.Next()
	}
}

// RoleProtected reloads the caller so deactivation and role changes apply
// before the token expires.
func RoleProtected(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok {
			return response.Unauthorized(c, "User not authenticated")
		}

		var u models.User
		if err := database.DB.Preload("Role").First(&u, userID).Error; err != nil {
			return response.Unauthorized(c, "User not found")
		}
		if !u.Active {
			return response.Unauthorized(c, "Account is disabled")
		}
		if u.Role == nil {
			return response.Forbidden(c, "User has no role assigned")
		}
		c.Locals("role", u.Role.Name)

		for _, role := range allowedRoles {
			if u.Role.Name == role {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}
