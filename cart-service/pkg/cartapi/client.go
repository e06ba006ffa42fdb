package cartapi

import (
	"context"
	"net/http"

	"github.com/fjod/tradecart/pkg/upstream"
)

type Client struct {
	api *upstream.Client
}

func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// Get returns the cart of the user owning authorization.
func (c *Client) Get(ctx context.Context, authorization string) (Cart, error) {
	var resp CartResponse
	if err := c.api.Do(ctx, http.MethodGet, "/", upstream.Bearer(authorization), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return Cart{}, nil
	}
	return resp.Items, nil
}
