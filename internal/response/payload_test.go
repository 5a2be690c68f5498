package response_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h fiber.Handler) map[string]json.RawMessage {
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestPermissions(t *testing.T) {
	t.Run("Writes the state at the top level", func(t *testing.T) {
		out := get(t, func(c *fiber.Ctx) error {
			return response.Permissions(c,
				map[string][]string{"admin": {"dashboard"}},
				[]string{"Facturación"})
		})

		assert.JSONEq(t, `true`, string(out["success"]))
		assert.JSONEq(t, `{"admin":["dashboard"]}`, string(out["permissions"]))
		assert.JSONEq(t, `["Facturación"]`, string(out["restricted_pages"]))
		assert.NotContains(t, out, "data")
	})

	t.Run("Nil collections are written empty", func(t *testing.T) {
		out := get(t, func(c *fiber.Ctx) error {
			return response.Permissions(c, nil, nil)
		})

		assert.JSONEq(t, `{}`, string(out["permissions"]))
		assert.JSONEq(t, `[]`, string(out["restricted_pages"]))
	})
}

func TestAuthorization(t *testing.T) {
	out := get(t, func(c *fiber.Ctx) error {
		return response.Authorization(c, "store-1", "https://auth.example/authorize", "https://api.example/callback", nil)
	})

	assert.JSONEq(t, `"store-1"`, string(out["store_id"]))
	assert.JSONEq(t, `"https://auth.example/authorize"`, string(out["auth_url"]))
	assert.JSONEq(t, `"https://api.example/callback"`, string(out["redirect_uri"]))
	assert.JSONEq(t, `[]`, string(out["instructions"]))
}
