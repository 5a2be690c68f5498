package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jordymora1978/dropux-admin/internal/marketplace"
	"github.com/jordymora1978/dropux-admin/internal/models"
)

func (c *Client) Sites(ctx context.Context) ([]marketplace.Site, error) {
	var sites []marketplace.Site
	if err := c.data(ctx, http.MethodGet, c.endpoints.Sales, "/api/ml/sites", nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (c *Client) ConnectStore(ctx context.Context, req marketplace.ConnectRequest) (*marketplace.ConnectResponse, error) {
	var res marketplace.ConnectResponse
	if err := c.do(ctx, http.MethodPost, c.endpoints.Sales, "/api/ml/connect-store", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListStores(ctx context.Context) ([]models.MarketplaceStore, error) {
	var stores []models.MarketplaceStore
	if err := c.data(ctx, http.MethodGet, c.endpoints.Sales, "/api/ml/stores", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

func (c *Client) DeleteStore(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoints.Sales, "/api/ml/stores/"+url.PathEscape(id), nil, nil)
}

// ReconnectStore asks for a new authorization URL for a failed or connected store.
func (c *Client) ReconnectStore(ctx context.Context, id string) (*marketplace.ConnectResponse, error) {
	var res marketplace.ConnectResponse
	path := "/api/ml/stores/" + url.PathEscape(id) + "/reconnect"
	if err := c.do(ctx, http.MethodPost, c.endpoints.Sales, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) StoreHistory(ctx context.Context, id string) ([]models.StoreStatusHistory, error) {
	var history []models.StoreStatusHistory
	path := "/api/ml/stores/" + url.PathEscape(id) + "/history"
	if err := c.data(ctx, http.MethodGet, c.endpoints.Sales, path, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}
