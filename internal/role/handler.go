package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/response"
)

// GetRolePermissionsHandler serves the full permission state. Restricted
// pages go out as display names.
func GetRolePermissionsHandler(c *fiber.Ctx) error {
	perms, err := LoadPermissions(database.DB)
	if err != nil {
		return response.InternalError(c, "Failed to load role permissions")
	}
	ids, err := LoadRestrictedIDs(database.DB)
	if err != nil {
		return response.InternalError(c, "Failed to load restricted pages")
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, Catalog.IDToName(id))
	}

	return response.Permissions(c, perms, names)
}

func SaveRolePermissionsHandler(c *fiber.Ctx) error {
	roleName := c.Query("role_name")
	if roleName == "" {
		return response.ValidationError(c, map[string]string{
			"role_name": "role_name is required",
		})
	}

	var pageIDs []string
	if err := c.BodyParser(&pageIDs); err != nil {
		return response.BadRequest(c, "Body must be a JSON array of page IDs", err.Error())
	}

	saved, err := SaveRolePermissions(database.DB, roleName, pageIDs, currentUserID(c))
	if err != nil {
		if errors.Is(err, ErrUnknownRole) {
			return response.NotFound(c, "Role")
		}
		return response.InternalError(c, "Failed to save role permissions")
	}

	return response.Success(c, fiber.Map{
		"role_name": roleName,
		"pages":     saved,
	}, "Role permissions saved successfully")
}

func SaveRestrictedPagesHandler(c *fiber.Ctx) error {
	var names []string
	if err := c.BodyParser(&names); err != nil {
		return response.BadRequest(c, "Body must be a JSON array of page names", err.Error())
	}

	ids, dropped, err := SaveRestrictedPages(database.DB, names, currentUserID(c))
	if err != nil {
		return response.InternalError(c, "Failed to save restricted pages")
	}

	if dropped == nil {
		dropped = []string{}
	}
	return response.Success(c, fiber.Map{
		"page_ids": ids,
		"dropped":  dropped,
	}, "Restricted pages saved successfully")
}

func ListRolesHandler(c *fiber.Ctx) error {
	roles, err := ListRoles(database.DB)
	if err != nil {
		return response.InternalError(c, "Failed to fetch roles")
	}
	return response.Success(c, roles, "Roles retrieved successfully")
}

// AvailablePagesHandler lists the catalog pages the caller's role may assign.
// Restricted pages are hidden unless the caller is privileged.
func AvailablePagesHandler(c *fiber.Ctx) error {
	viewer, _ := permission.ParseRole(currentRole(c))

	restricted, err := LoadRestrictedIDs(database.DB)
	if err != nil {
		return response.InternalError(c, "Failed to load restricted pages")
	}
	hidden := make(map[string]struct{}, len(restricted))
	if !viewer.Privileged() {
		for _, id := range restricted {
			hidden[id] = struct{}{}
		}
	}

	out := []catalog.Group{}
	for _, g := range Catalog.Groups() {
		var pages []catalog.Page
		for _, p := range g.Pages {
			if _, ok := hidden[p.ID]; !ok {
				pages = append(pages, p)
			}
		}
		if len(pages) > 0 {
			g.Pages = pages
			out = append(out, g)
		}
	}

	return response.Success(c, out, "Pages retrieved successfully")
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

func currentRole(c *fiber.Ctx) string {
	r, _ := c.Locals("role").(string)
	return r
}
