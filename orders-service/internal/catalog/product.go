// Package catalog reads product pricing from the external product service.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fjod/tradecart/orders-service/internal/pricing"
	"github.com/shopspring/decimal"
)

var ErrMissingID = errors.New("product has no usable _id")

// Product is the priced view of a catalog entry.
type Product struct {
	ID    string
	Name  string
	SKU   string
	SP    decimal.Decimal
	GST   decimal.Decimal
	Tiers []pricing.Tier
}

// UnitPrice resolves the price paid per unit when buying quantity units.
func (p Product) UnitPrice(quantity int) decimal.Decimal {
	return pricing.ResolveUnitPrice(p.SP, p.Tiers, quantity)
}

type rawProduct struct {
	ID              json.RawMessage `json:"_id"`
	Name            string          `json:"name"`
	SP              json.RawMessage `json:"sp"`
	GST             json.RawMessage `json:"gst"`
	VariablePricing json.RawMessage `json:"variable_pricing"`
	SKUs            json.RawMessage `json:"skus"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	sp, err := decodeAmount(raw.SP)
	if err != nil {
		return fmt.Errorf("product %s sp: %w", id, err)
	}
	gst, err := decodeAmount(raw.GST)
	if err != nil {
		return fmt.Errorf("product %s gst: %w", id, err)
	}
	tiers, err := pricing.DecodeTiers(raw.VariablePricing)
	if err != nil {
		tiers = nil
	}

	*p = Product{
		ID:    id,
		Name:  raw.Name,
		SKU:   firstSKU(raw.SKUs),
		SP:    sp,
		GST:   gst,
		Tiers: tiers,
	}
	return nil
}

// decodeID accepts "abc" and {"$oid": "abc"}.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", ErrMissingID
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil && oid.OID != "" {
		return oid.OID, nil
	}
	return "", ErrMissingID
}

func decodeAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return decimal.Zero, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// firstSKU stringifies the first element of the skus list.
func firstSKU(raw json.RawMessage) string {
	var skus []json.RawMessage
	if err := json.Unmarshal(raw, &skus); err != nil || len(skus) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(skus[0], &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(skus[0]))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(skus[0], &b); err == nil {
		return strconv.FormatBool(b)
	}
	return string(bytes.TrimSpace(skus[0]))
}
