package orderapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/tradecart/pkg/upstream"
)

type Client struct {
	api *upstream.Client
}

func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// GetOrder fetches an order on behalf of the user owning authorization.
func (c *Client) GetOrder(ctx context.Context, orderID, authorization string) (*Order, error) {
	var resp Envelope[Order]
	path := "/orders/" + url.PathEscape(orderID)
	if err := c.api.Do(ctx, http.MethodGet, path, upstream.Bearer(authorization), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Payload, nil
}

// MarkPaid presents a payment-status capability token.
func (c *Client) MarkPaid(ctx context.Context, token string) (*Order, error) {
	var resp Envelope[Order]
	if err := c.api.Do(ctx, http.MethodPut, "/payment-status", nil, PaymentStatusRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	return &resp.Payload, nil
}
