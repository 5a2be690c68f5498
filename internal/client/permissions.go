package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jordymora1978/dropux-admin/internal/permission"
)

var _ permission.Remote = (*Client)(nil)

func (c *Client) LoadPermissions(ctx context.Context) (*permission.RemoteState, error) {
	var state permission.RemoteState
	if err := c.do(ctx, http.MethodGet, c.endpoints.Auth, "/admin/role-permissions", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveRolePermissions replaces the role's full page list.
func (c *Client) SaveRolePermissions(ctx context.Context, role permission.Role, pageIDs []string) error {
	if pageIDs == nil {
		pageIDs = []string{}
	}
	path := "/admin/save-role-permissions?role_name=" + url.QueryEscape(string(role))
	return c.do(ctx, http.MethodPost, c.endpoints.Auth, path, pageIDs, nil)
}

// SaveRestrictedPages replaces the restricted set. Entries are display names.
func (c *Client) SaveRestrictedPages(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}
	return c.do(ctx, http.MethodPost, c.endpoints.Auth, "/admin/save-restricted-pages", names, nil)
}
