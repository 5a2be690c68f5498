package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/jordymora1978/dropux-admin/internal/role"
)

// PageProtected lets the request through only when the caller's role lists
// pageID. Restricted pages are refused to every role but the privileged one.
func PageProtected(pageID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		allowed, err := HasPageAccess(userID, pageID)
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !allowed {
			return response.Forbidden(c, "You don't have access to this page")
		}

		return c.Next()
	}
}

func HasPageAccess(userID uint, pageID string) (bool, error) {
	var user models.User
	if err := database.DB.Preload("Role").First(&user, userID).Error; err != nil {
		return false, err
	}

	if user.Role == nil || !user.Active {
		return false, nil
	}

	r, ok := permission.ParseRole(user.Role.Name)
	if !ok {
		return false, nil
	}
	if r.Privileged() {
		return true, nil
	}

	restricted, err := role.IsRestricted(database.DB, pageID)
	if err != nil {
		return false, err
	}
	if restricted {
		return false, nil
	}

	return role.RoleHasPage(database.DB, user.Role.Name, pageID)
}
