package domain

import (
	"fmt"
	"math"

	"github.com/fjod/tradecart/pkg/apperr"
)

type fieldKind int

const (
	stringField fieldKind = iota
	intField
)

// patchable lists the order attributes an owner may change. Unknown keys are
// ignored.
var patchable = map[string]fieldKind{
	"currency":            stringField,
	"shippingPhoneNumber": stringField,
	"shippingAddress1":    stringField,
	"shippingAddress2":    stringField,
	"shippingAddress3":    stringField,
	"recipientName":       stringField,
	"shippingCity":        stringField,
	"shippingState":       stringField,
	"shippingPostalCode":  stringField,
	"shippingCountry":     stringField,
	"shippingMethod":      stringField,
	"source":              intField,
}

// Patch is a validated set of field updates keyed by stored field name.
type Patch map[string]any

// NewPatch filters fields down to the patchable ones and checks their types.
func NewPatch(fields map[string]any) (Patch, error) {
	p := Patch{}
	for name, value := range fields {
		kind, ok := patchable[name]
		if !ok {
			continue
		}
		switch kind {
		case stringField:
			s, ok := value.(string)
			if !ok {
				return nil, apperr.Newf(apperr.Validation, "%s must be a string", name)
			}
			p[name] = s
		case intField:
			f, ok := value.(float64)
			if !ok || f != math.Trunc(f) {
				return nil, apperr.Newf(apperr.Validation, "%s must be an integer", name)
			}
			p[name] = int(f)
		default:
			return nil, fmt.Errorf("unhandled field kind for %s", name)
		}
	}
	return p, nil
}
