package middleware_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/auth"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/middleware"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPageApp(t *testing.T) *fiber.App {
	app := testutils.SetupTestApp(t)
	for _, page := range []string{"orders", "billing", "roles", "inventory"} {
		app.Get("/pages/"+page, auth.JWTProtected(), middleware.PageProtected(page), func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
	}
	return app
}

func TestPageProtected(t *testing.T) {
	app := setupPageApp(t)
	db := database.DB

	_, advisorToken := testutils.LoginAs(t, db, "advisor@test.com", "advisor")
	_, superToken := testutils.LoginAs(t, db, "root@test.com", "super_admin")
	_, adminToken := testutils.LoginAs(t, db, "admin@test.com", "admin")

	t.Run("Success - Granted page", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/pages/orders", nil, advisorToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Error - Page not granted", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/pages/inventory", nil, advisorToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("Error - Restricted page blocks granted role", func(t *testing.T) {
		_, _, err := role.SaveRestrictedPages(db, []string{"Facturación"}, 0)
		require.NoError(t, err)
		defer role.SaveRestrictedPages(db, nil, 0)

		resp, err := testutils.MakeRequest(app, "GET", "/pages/billing", nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		resp, err = testutils.MakeRequest(app, "GET", "/pages/billing", nil, superToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Success - Super admin sees every page", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/pages/roles", nil, superToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Error - Disabled user", func(t *testing.T) {
		u, token := testutils.LoginAs(t, db, "off@test.com", "advisor")
		db.Model(&models.User{}).Where("id = ?", u.ID).Update("active", false)

		resp, err := testutils.MakeRequest(app, "GET", "/pages/orders", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})
}

func TestHasPageAccess(t *testing.T) {
	testutils.SetupTestApp(t)
	db := database.DB

	u := testutils.CreateTestUser(t, db, "supplier@test.com", "password", "supplier")

	ok, err := middleware.HasPageAccess(u.ID, "inventory")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = role.SaveRolePermissions(db, "supplier", []string{"dashboard"}, 0)
	require.NoError(t, err)

	ok, err = middleware.HasPageAccess(u.ID, "inventory")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = middleware.HasPageAccess(9999, "inventory")
	assert.Error(t, err)
}
