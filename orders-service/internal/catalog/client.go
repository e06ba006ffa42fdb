package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/tradecart/pkg/logger"
	"github.com/fjod/tradecart/pkg/upstream"
	"go.uber.org/zap"
)

type Client struct {
	api *upstream.Client
}

func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

type multipleProductsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type multipleProductsResponse struct {
	Payload []json.RawMessage `json:"payload"`
}

// Products fetches the given ids in one call. Entries the product service
// returns without a usable id or with malformed prices are skipped.
func (c *Client) Products(ctx context.Context, ids []string) ([]Product, error) {
	var resp multipleProductsResponse
	err := c.api.Do(ctx, http.MethodPost, "/multiple-products", nil, multipleProductsRequest{ProductIDs: ids}, &resp)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	products := make([]Product, 0, len(resp.Payload))
	for _, raw := range resp.Payload {
		var p Product
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Warn("skipping catalog entry", zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}
