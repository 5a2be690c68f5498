package response

import (
	"github.com/gofiber/fiber/v2"
)

// The permission and store connection endpoints answer at the top level
// rather than inside data; the dashboard reads them that way.

type PermissionsPayload struct {
	Success         bool                `json:"success"`
	Permissions     map[string][]string `json:"permissions"`
	RestrictedPages []string            `json:"restricted_pages"`
}

type AuthorizationPayload struct {
	Success      bool     `json:"success"`
	StoreID      string   `json:"store_id"`
	AuthURL      string   `json:"auth_url"`
	RedirectURI  string   `json:"redirect_uri"`
	Instructions []string `json:"instructions"`
}

// Permissions writes the role map and restricted page names. Nil inputs go
// out as empty collections, never null.
func Permissions(c *fiber.Ctx, perms map[string][]string, restricted []string) error {
	if perms == nil {
		perms = map[string][]string{}
	}
	if restricted == nil {
		restricted = []string{}
	}
	return c.JSON(PermissionsPayload{
		Success:         true,
		Permissions:     perms,
		RestrictedPages: restricted,
	})
}

func Authorization(c *fiber.Ctx, storeID, authURL, redirectURI string, instructions []string) error {
	if instructions == nil {
		instructions = []string{}
	}
	return c.JSON(AuthorizationPayload{
		Success:      true,
		StoreID:      storeID,
		AuthURL:      authURL,
		RedirectURI:  redirectURI,
		Instructions: instructions,
	})
}
