package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// UnmarshalJSON decodes a tier object keeping the key order of the document.
// Rules whose price is not a number are dropped.
func (t *Tier) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("pricing tier must be an object, got %v", tok)
	}

	var rules Tier
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected tier key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var price decimal.Decimal
		if err := price.UnmarshalJSON(raw); err != nil {
			continue
		}
		rules = append(rules, Rule{Token: key, Price: price})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = rules
	return nil
}

// DecodeTiers accepts a list of tier objects or a single tier object. Entries
// that are not objects are skipped; null or empty input yields no tiers.
func DecodeTiers(data []byte) ([]Tier, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	switch data[0] {
	case '{':
		var t Tier
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return []Tier{t}, nil
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, err
		}
		tiers := make([]Tier, 0, len(raws))
		for _, raw := range raws {
			var t Tier
			if err := json.Unmarshal(raw, &t); err != nil {
				continue
			}
			tiers = append(tiers, t)
		}
		return tiers, nil
	default:
		return nil, fmt.Errorf("variable_pricing must be a list or object")
	}
}
