// Package cartapi holds the cart wire types and the client other services use
// to read a buyer's cart.
package cartapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Source is the fulfilment origin of a cart line.
type Source string

const (
	SourceExChina          Source = "Ex-china"
	SourceExIndiaCustom    Source = "Ex-india-custom"
	SourceDoorstepDelivery Source = "Doorstep-delivery"
)

var (
	ErrUnknownSource   = errors.New("unknown source")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrMissingProduct  = errors.New("product id is required")
	ErrNegativeVariant = errors.New("variant index must not be negative")
)

var sources = []Source{SourceExChina, SourceExIndiaCustom, SourceDoorstepDelivery}

// ParseSource accepts the wire values case-insensitively, with "_" or "-".
func ParseSource(s string) (Source, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, src := range sources {
		if strings.ToLower(string(src)) == norm {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

func (s *Source) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseSource(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CartLine is one variant of a product in a cart.
type CartLine struct {
	ProductID    string `json:"productId"`
	VariantIndex *int   `json:"variantIndex"`
	Source       Source `json:"source"`
	Quantity     int    `json:"quantity"`
}

// Key identifies a line within a product's list.
type Key struct {
	VariantIndex *int
	Source       Source
}

func (k Key) String() string {
	if k.VariantIndex == nil {
		return fmt.Sprintf("variant=none source=%s", k.Source)
	}
	return fmt.Sprintf("variant=%d source=%s", *k.VariantIndex, k.Source)
}

func (l CartLine) Key() Key {
	return Key{VariantIndex: l.VariantIndex, Source: l.Source}
}

// Matches reports whether l has identity k.
func (l CartLine) Matches(k Key) bool {
	if l.Source != k.Source {
		return false
	}
	if l.VariantIndex == nil || k.VariantIndex == nil {
		return l.VariantIndex == nil && k.VariantIndex == nil
	}
	return *l.VariantIndex == *k.VariantIndex
}

func (l CartLine) Validate() error {
	if l.ProductID == "" {
		return ErrMissingProduct
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.VariantIndex != nil && *l.VariantIndex < 0 {
		return ErrNegativeVariant
	}
	if _, err := ParseSource(string(l.Source)); err != nil {
		return err
	}
	return nil
}

// ParseLine decodes and validates a single stored line.
func ParseLine(raw json.RawMessage) (CartLine, error) {
	var l CartLine
	if err := json.Unmarshal(raw, &l); err != nil {
		return CartLine{}, fmt.Errorf("decode cart line: %w", err)
	}
	if err := l.Validate(); err != nil {
		return CartLine{}, err
	}
	return l, nil
}

// ParseLines decodes a stored JSON array, keeping only the lines that belong
// to productID and pass validation. A value that is not an array yields nil.
func ParseLines(productID string, data []byte) []CartLine {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}
	lines := make([]CartLine, 0, len(raws))
	for _, raw := range raws {
		l, err := ParseLine(raw)
		if err != nil || l.ProductID != productID {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Cart maps product id to its variant lines.
type Cart map[string][]CartLine

func (c Cart) Empty() bool {
	for _, lines := range c {
		if len(lines) > 0 {
			return false
		}
	}
	return true
}

// ProductIDs returns the products that have at least one line.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for id, lines := range c {
		if len(lines) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// CartResponse is the body of GET /.
type CartResponse struct {
	Items Cart `json:"items"`
}

// ItemRequest is the body of POST and PATCH /items/{productId}.
type ItemRequest struct {
	VariantIndex *int   `json:"variantIndex"`
	Source       string `json:"source"`
	Quantity     *int   `json:"quantity"`
}
