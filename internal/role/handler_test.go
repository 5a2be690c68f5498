package role_test

import (
	"testing"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/snapshot"
	"github.com/jordymora1978/dropux-admin/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type permissionsBody struct {
	Success         bool                `json:"success"`
	Permissions     map[string][]string `json:"permissions"`
	RestrictedPages []string            `json:"restricted_pages"`
}

func TestGetRolePermissionsHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	db := database.DB

	_, token := testutils.LoginAs(t, db, "admin@test.com", "admin")

	_, _, err := role.SaveRestrictedPages(db, []string{"roles"}, 0)
	require.NoError(t, err)

	t.Run("Success - Returns every role and restricted names", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/admin/role-permissions", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var body permissionsBody
		testutils.ParseResponse(t, resp, &body)
		assert.True(t, body.Success)
		assert.Len(t, body.Permissions, 6)
		assert.ElementsMatch(t, catalog.Default().IDs(), body.Permissions["super_admin"])
		assert.Equal(t, []string{"Roles y Permisos"}, body.RestrictedPages)
	})

	t.Run("Error - Advisor is forbidden", func(t *testing.T) {
		_, advisorToken := testutils.LoginAs(t, db, "advisor@test.com", "advisor")

		resp, err := testutils.MakeRequest(app, "GET", "/admin/role-permissions", nil, advisorToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("Error - No token", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/admin/role-permissions", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestSaveRolePermissionsHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	db := database.DB

	_, token := testutils.LoginAs(t, db, "admin@test.com", "admin")

	t.Run("Success - Full replace with duplicates removed", func(t *testing.T) {
		body := []string{"dashboard", "orders", "orders", "reports"}

		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-role-permissions?role_name=advisor", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		testutils.AssertSuccess(t, resp)

		perms, err := role.LoadPermissions(db)
		require.NoError(t, err)
		assert.Equal(t, []string{"dashboard", "orders", "reports"}, perms["advisor"])
	})

	t.Run("Success - Empty list clears the role", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-role-permissions?role_name=supplier", []string{}, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		perms, err := role.LoadPermissions(db)
		require.NoError(t, err)
		assert.Empty(t, perms["supplier"])
	})

	t.Run("Error - Missing role_name", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-role-permissions", []string{"dashboard"}, token)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Error - Unknown role", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-role-permissions?role_name=viewer", []string{"dashboard"}, token)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)

		testutils.AssertError(t, resp, "NOT_FOUND")
	})

	t.Run("Error - Body is not an array", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-role-permissions?role_name=advisor", map[string]string{"page": "x"}, token)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)

		testutils.AssertError(t, resp, "BAD_REQUEST")
	})
}

func TestSaveRestrictedPagesHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	db := database.DB

	_, superToken := testutils.LoginAs(t, db, "root@test.com", "super_admin")
	_, adminToken := testutils.LoginAs(t, db, "admin@test.com", "admin")

	t.Run("Success - Names are stored as IDs", func(t *testing.T) {
		body := []string{"Facturación", "Mis Cotizaciones", "roles", "Página Fantasma"}

		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-restricted-pages", body, superToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, []interface{}{"Página Fantasma"}, data["dropped"])

		ids, err := role.LoadRestrictedIDs(db)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"billing", "quotes", "roles"}, ids)
	})

	t.Run("Success - Replace, not merge", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-restricted-pages", []string{"Reportes"}, superToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		ids, err := role.LoadRestrictedIDs(db)
		require.NoError(t, err)
		assert.Equal(t, []string{"reports"}, ids)
	})

	t.Run("Error - Admin cannot change restrictions", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/admin/save-restricted-pages", []string{"Reportes"}, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}

func TestAvailablePagesHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	db := database.DB

	_, superToken := testutils.LoginAs(t, db, "root@test.com", "super_admin")
	_, adminToken := testutils.LoginAs(t, db, "admin@test.com", "admin")

	_, _, err := role.SaveRestrictedPages(db, []string{"billing"}, 0)
	require.NoError(t, err)

	pageIDs := func(token string) []string {
		resp, err := testutils.MakeRequest(app, "GET", "/admin/pages", nil, token)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var result struct {
			Data []catalog.Group `json:"data"`
		}
		testutils.ParseResponse(t, resp, &result)
		var ids []string
		for _, g := range result.Data {
			for _, p := range g.Pages {
				ids = append(ids, p.ID)
			}
		}
		return ids
	}

	assert.Contains(t, pageIDs(superToken), "billing")
	assert.NotContains(t, pageIDs(adminToken), "billing")
}

func TestSnapshotOnSave(t *testing.T) {
	testutils.SetupTestApp(t)
	db := database.DB

	dir := t.TempDir()
	arch, err := snapshot.NewLocal(dir)
	require.NoError(t, err)
	role.Configure(nil, arch)
	defer role.Configure(nil, nil)

	_, err = role.SaveRolePermissions(db, "dropshipper", []string{"orders"}, 42)
	require.NoError(t, err)

	snap, err := arch.Latest()
	require.NoError(t, err)
	assert.Equal(t, "role:dropshipper", snap.Reason)
	assert.Equal(t, uint(42), snap.ChangedBy)
	assert.Equal(t, []string{"orders"}, snap.Permissions["dropshipper"])
}

func TestSeedDefaultRolesIsIdempotent(t *testing.T) {
	testutils.SetupTestApp(t)
	db := database.DB

	_, err := role.SaveRolePermissions(db, "advisor", []string{"messages"}, 0)
	require.NoError(t, err)

	require.NoError(t, role.SeedDefaultRoles(db, catalog.Default()))

	roles, err := role.ListRoles(db)
	require.NoError(t, err)
	assert.Len(t, roles, 6)

	perms, err := role.LoadPermissions(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"messages"}, perms["advisor"])
}
