package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/client"
	"github.com/jordymora1978/dropux-admin/internal/config"
	"github.com/jordymora1978/dropux-admin/internal/connect"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/marketplace"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/roster"
	"github.com/jordymora1978/dropux-admin/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) config.Endpoints {
	app := testutils.SetupTestApp(t)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return config.Endpoints{Auth: srv.URL, Sales: srv.URL}
}

func login(t *testing.T, ep config.Endpoints, email, roleName string) *client.Client {
	testutils.CreateTestUser(t, database.DB, email, "password123", roleName)
	c := client.New(ep, nil)
	require.NoError(t, c.Login(context.Background(), email, "password123"))
	return c
}

func TestSessionAgainstServer(t *testing.T) {
	ep := startServer(t)
	ctx := context.Background()
	c := login(t, ep, "root@test.com", "super_admin")

	s := permission.NewSession(catalog.Default(), c, permission.Options{Viewer: permission.SuperAdmin})
	defer s.Close()
	require.NoError(t, s.Load(ctx))
	assert.False(t, s.HasUnsavedChanges())

	require.NoError(t, s.AddRestriction("billing"))
	require.NoError(t, s.AddPage(permission.Advisor, "reports"))
	require.NoError(t, s.Save(ctx))
	assert.False(t, s.HasUnsavedChanges())

	ids, err := role.LoadRestrictedIDs(database.DB)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing"}, ids)

	perms, err := role.LoadPermissions(database.DB)
	require.NoError(t, err)
	assert.Contains(t, perms["advisor"], "reports")
	assert.NotContains(t, perms["admin"], "billing")

	fresh := permission.NewSession(catalog.Default(), c, permission.Options{Viewer: permission.SuperAdmin})
	defer fresh.Close()
	require.NoError(t, fresh.Load(ctx))
	assert.True(t, fresh.IsRestricted("billing"))
	assert.Contains(t, fresh.Permissions(permission.Advisor), "reports")
}

func TestAdminCannotSaveRestrictions(t *testing.T) {
	ep := startServer(t)
	c := login(t, ep, "admin@test.com", "admin")

	err := c.SaveRestrictedPages(context.Background(), []string{"Facturación"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestStoreLifecycleAgainstServer(t *testing.T) {
	ep := startServer(t)
	ctx := context.Background()
	c := login(t, ep, "seller@test.com", "marketplace")

	sites, err := c.Sites(ctx)
	require.NoError(t, err)
	assert.Len(t, sites, 7)

	res, err := c.ConnectStore(ctx, marketplace.ConnectRequest{
		SiteID:    "MLB",
		AppID:     "1234567890",
		AppSecret: "abcdefghijklmnopqrstuvwxyz123456",
		StoreName: "Loja",
	})
	require.NoError(t, err)
	assert.Contains(t, res.AuthURL, "auth.mercadolivre.com.br")

	stores, err := c.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, res.StoreID, stores[0].ID)

	history, err := c.StoreHistory(ctx, res.StoreID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StorePending, history[0].ToStatus)

	_, err = c.ReconnectStore(ctx, res.StoreID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)

	require.NoError(t, c.DeleteStore(ctx, res.StoreID))
	stores, err = c.ListStores(ctx)
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestExpiredTokenLogsOut(t *testing.T) {
	ep := startServer(t)
	tokens := &client.MemoryTokenStore{}
	tokens.SetToken("expired.token.value")

	loggedOut := false
	c := client.New(ep, tokens, client.WithOnUnauthorized(func() { loggedOut = true }))

	_, err := c.ListUsers(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, loggedOut)
	assert.Empty(t, tokens.Token())
}

func TestMeAgainstServer(t *testing.T) {
	ep := startServer(t)
	c := login(t, ep, "advisor@test.com", "advisor")

	u, pages, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "advisor@test.com", u.Email)
	require.NotNil(t, u.Role)
	assert.Equal(t, "advisor", u.Role.Name)
	assert.Contains(t, pages, "dashboard")
}

func TestRosterAgainstServer(t *testing.T) {
	ep := startServer(t)
	ctx := context.Background()
	c := login(t, ep, "admin@test.com", "admin")
	target := testutils.CreateTestUser(t, database.DB, "advisor@test.com", "password123", "advisor")
	root := testutils.CreateTestUser(t, database.DB, "root@test.com", "password123", "super_admin")

	r := roster.New(c)
	require.NoError(t, r.Refresh(ctx))
	assert.Len(t, r.Entries(), 3)

	require.NoError(t, r.SetRole(ctx, target.ID, "supplier"))
	e, ok := r.Get(target.ID)
	require.True(t, ok)
	assert.Equal(t, "supplier", e.User.Role.Name)
	assert.NotZero(t, e.User.RoleID)

	// An admin may not touch a super admin; the optimistic change is reverted.
	err := r.SetActive(ctx, root.ID, false)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	e, _ = r.Get(root.ID)
	assert.True(t, e.User.Active)
	assert.False(t, e.Pending)
}

type nopWindow struct{}

func (nopWindow) Closed() bool { return false }
func (nopWindow) Close()       {}

type nopOpener struct{ url string }

func (o *nopOpener) Open(u string) (connect.Window, error) {
	o.url = u
	return nopWindow{}, nil
}

func TestConnectFlowAgainstServer(t *testing.T) {
	ep := startServer(t)
	ctx := context.Background()
	c := login(t, ep, "seller@test.com", "marketplace")

	opener := &nopOpener{}
	f := connect.New(c, opener, connect.Options{AllowedOrigins: []string{testutils.FrontendOrigin}})
	defer f.Reset()

	require.NoError(t, f.Submit(ctx, marketplace.ConnectRequest{
		SiteID:    "MCO",
		AppID:     "1234567890",
		AppSecret: "abcdefghijklmnopqrstuvwxyz123456",
		StoreName: "Tienda",
	}))
	assert.Equal(t, connect.StepInstructions, f.Step())
	assert.NotEmpty(t, f.Instructions().Instructions)

	require.NoError(t, f.Authorize())
	assert.Contains(t, opener.url, "auth.mercadolibre.com.co")

	assert.True(t, f.Deliver(connect.Message{Origin: testutils.FrontendOrigin, Type: marketplace.MessageSuccess}))
	assert.Equal(t, connect.StepDone, f.Step())
}
