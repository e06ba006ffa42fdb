package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/upstream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(upstream.New("product service", srv.URL, time.Second))
}

func TestProductUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantSKU string
		wantSP  string
		wantGST string
		wantErr bool
	}{
		{
			name:    "string id",
			input:   `{"_id":"p1","sp":120.5,"gst":0.18,"skus":["A-1","A-2"],"name":"Lamp"}`,
			wantID:  "p1",
			wantSKU: "A-1",
			wantSP:  "120.5",
			wantGST: "0.18",
		},
		{
			name:    "oid id and numeric sku",
			input:   `{"_id":{"$oid":"64f0c2"},"sp":10,"skus":[12345]}`,
			wantID:  "64f0c2",
			wantSKU: "12345",
			wantSP:  "10",
			wantGST: "0",
		},
		{
			name:    "missing prices default to zero",
			input:   `{"_id":"p2"}`,
			wantID:  "p2",
			wantSKU: "",
			wantSP:  "0",
			wantGST: "0",
		},
		{
			name:    "numeric id rejected",
			input:   `{"_id":42,"sp":1}`,
			wantErr: true,
		},
		{
			name:    "missing id rejected",
			input:   `{"sp":1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
			assert.Equal(t, tt.wantSKU, p.SKU)
			assert.True(t, decimal.RequireFromString(tt.wantSP).Equal(p.SP), p.SP.String())
			assert.True(t, decimal.RequireFromString(tt.wantGST).Equal(p.GST), p.GST.String())
		})
	}
}

func TestProductUnitPrice_UsesVariablePricing(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "p1",
		"sp": 100,
		"variable_pricing": [{"1-4": 95, ">5": 80}]
	}`), &p))

	assert.True(t, decimal.NewFromInt(95).Equal(p.UnitPrice(2)))
	assert.True(t, decimal.NewFromInt(80).Equal(p.UnitPrice(10)))
}

func TestProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/multiple-products", r.URL.Path)

		var body multipleProductsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"p1", "p2"}, body.ProductIDs)

		_, _ = w.Write([]byte(`{"payload":[
			{"_id":"p1","sp":10,"skus":["S1"],"name":"One"},
			{"_id":null,"sp":5},
			{"_id":{"$oid":"p2"},"sp":"7.25","name":"Two"}
		]}`))
	})

	products, err := c.Products(context.Background(), []string{"p1", "p2"})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)
	assert.True(t, decimal.RequireFromString("7.25").Equal(products[1].SP))
}

func TestProducts_UpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Products(context.Background(), []string{"p1"})

	assert.Equal(t, apperr.UpstreamUnavailable, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "product service")
}
