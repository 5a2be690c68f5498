package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jordymora1978/dropux-admin/internal/models"
)

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.data(ctx, http.MethodGet, c.endpoints.Auth, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) SetUserActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	var u models.User
	path := fmt.Sprintf("/admin/users/%d/status", id)
	if err := c.data(ctx, http.MethodPut, c.endpoints.Auth, path, map[string]bool{"active": active}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) SetUserRole(ctx context.Context, id uint, roleName string) (*models.User, error) {
	var u models.User
	path := fmt.Sprintf("/admin/users/%d/role", id)
	if err := c.data(ctx, http.MethodPut, c.endpoints.Auth, path, map[string]string{"role_name": roleName}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the logged-in user and the page IDs their role may open.
func (c *Client) Me(ctx context.Context) (*models.User, []string, error) {
	var out struct {
		User  models.User `json:"user"`
		Pages []string    `json:"pages"`
	}
	if err := c.data(ctx, http.MethodGet, c.endpoints.Auth, "/auth/me", nil, &out); err != nil {
		return nil, nil, err
	}
	return &out.User, out.Pages, nil
}
