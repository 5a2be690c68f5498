package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/testutils"
)

func startServer(t *testing.T) string {
	app := testutils.SetupTestApp(t)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, url, email string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--auth-url", url, "--email", email, "--password", "password123"))
	err := cmd.Execute()
	return out.String(), err
}

func TestGrantAndRevoke(t *testing.T) {
	url := startServer(t)
	testutils.CreateTestUser(t, database.DB, "root@test.com", "password123", "super_admin")

	_, err := execute(t, url, "root@test.com", "grant", "advisor", "reports")
	require.NoError(t, err)

	perms, err := role.LoadPermissions(database.DB)
	require.NoError(t, err)
	assert.Contains(t, perms["advisor"], "reports")

	_, err = execute(t, url, "root@test.com", "revoke", "advisor", "reports")
	require.NoError(t, err)

	perms, err = role.LoadPermissions(database.DB)
	require.NoError(t, err)
	assert.NotContains(t, perms["advisor"], "reports")
}

func TestDryRunSavesNothing(t *testing.T) {
	url := startServer(t)
	testutils.CreateTestUser(t, database.DB, "root@test.com", "password123", "super_admin")

	out, err := execute(t, url, "root@test.com", "grant", "supplier", "billing", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "role supplier")

	perms, err := role.LoadPermissions(database.DB)
	require.NoError(t, err)
	assert.NotContains(t, perms["supplier"], "billing")
}

func TestRestrictRequiresSuperAdmin(t *testing.T) {
	url := startServer(t)
	testutils.CreateTestUser(t, database.DB, "admin@test.com", "password123", "admin")

	_, err := execute(t, url, "admin@test.com", "restrict", "billing")
	assert.ErrorIs(t, err, permission.ErrNotPrivileged)
}

func TestRestrictStripsRoles(t *testing.T) {
	url := startServer(t)
	testutils.CreateTestUser(t, database.DB, "root@test.com", "password123", "super_admin")

	_, err := execute(t, url, "root@test.com", "restrict", "billing")
	require.NoError(t, err)

	ids, err := role.LoadRestrictedIDs(database.DB)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing"}, ids)

	perms, err := role.LoadPermissions(database.DB)
	require.NoError(t, err)
	assert.NotContains(t, perms["admin"], "billing")
	assert.Contains(t, perms["super_admin"], "billing")
}

func TestUnknownRole(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", "x@test.com", "grant", "owner", "reports")
	assert.ErrorContains(t, err, "unknown role")
}

func TestPermissionRows(t *testing.T) {
	cat := catalog.Default()
	m := permission.Map{permission.Advisor: {"orders", "dashboard"}}
	rows := permissionRows(cat, m, []permission.Role{permission.Advisor}, func(permission.Role) []string {
		return []string{"old-page"}
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"advisor", "Dashboard, Órdenes", "old-page"}, rows[1])
}
