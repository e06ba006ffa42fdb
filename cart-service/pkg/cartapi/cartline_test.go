package cartapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/tradecart/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want Source
	}{
		{"Ex-china", SourceExChina},
		{"ex_china", SourceExChina},
		{"EX-INDIA-CUSTOM", SourceExIndiaCustom},
		{"doorstep_delivery", SourceDoorstepDelivery},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSource("air-mail")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestCartLine_Matches(t *testing.T) {
	line := CartLine{ProductID: "p", VariantIndex: intPtr(1), Source: SourceExChina, Quantity: 1}

	assert.True(t, line.Matches(Key{VariantIndex: intPtr(1), Source: SourceExChina}))
	assert.False(t, line.Matches(Key{VariantIndex: intPtr(2), Source: SourceExChina}))
	assert.False(t, line.Matches(Key{VariantIndex: intPtr(1), Source: SourceDoorstepDelivery}))
	assert.False(t, line.Matches(Key{Source: SourceExChina}))

	noVariant := CartLine{ProductID: "p", Source: SourceExChina, Quantity: 1}
	assert.True(t, noVariant.Matches(Key{Source: SourceExChina}))
}

func TestParseLines_DropsInvalidEntries(t *testing.T) {
	data := []byte(`[
		{"productId":"p1","variantIndex":0,"source":"Ex-china","quantity":2},
		{"productId":"p1","variantIndex":null,"source":"ex_india_custom","quantity":1},
		{"productId":"p1","variantIndex":1,"source":"teleport","quantity":1},
		{"productId":"p1","variantIndex":2,"source":"Ex-china","quantity":0},
		{"productId":"p2","variantIndex":3,"source":"Ex-china","quantity":4},
		"garbage",
		{"productId":"p1","variantIndex":-1,"source":"Ex-china","quantity":1}
	]`)

	lines := ParseLines("p1", data)

	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, SourceExIndiaCustom, lines[1].Source)
	assert.Nil(t, lines[1].VariantIndex)
}

func TestParseLines_NotAnArray(t *testing.T) {
	assert.Nil(t, ParseLines("p1", []byte(`{"quantity":3}`)))
	assert.Nil(t, ParseLines("p1", []byte(`7`)))
}

func TestCart_EmptyAndProductIDs(t *testing.T) {
	assert.True(t, Cart{}.Empty())
	assert.True(t, Cart{"p": nil}.Empty())

	c := Cart{"p": {{ProductID: "p", Source: SourceExChina, Quantity: 1}}, "q": nil}
	assert.False(t, c.Empty())
	assert.Equal(t, []string{"p"}, c.ProductIDs())
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"items":{"p1":[{"productId":"p1","variantIndex":null,"source":"Ex-china","quantity":2}]}}`))
	}))
	defer srv.Close()

	cart, err := NewClient(upstream.New("cart service", srv.URL, time.Second)).Get(context.Background(), "Bearer t")

	require.NoError(t, err)
	require.Len(t, cart["p1"], 1)
	assert.Equal(t, 2, cart["p1"][0].Quantity)
}
