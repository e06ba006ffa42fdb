package http

import (
	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/fjod/tradecart/orders-service/pkg/orderapi"
)

func toWire(o *domain.Order) orderapi.Order {
	lines := make([]orderapi.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderapi.OrderLine{
			SKU:             l.SKU,
			SellerSKU:       l.SellerSKU,
			Quantity:        l.Quantity,
			QuantityShipped: l.Quantity,
			UnitPrice:       l.UnitPrice,
			Title:           l.Title,
			Source:          l.Source,
			CGST:            l.CGST,
			SGST:            l.SGST,
			IGST:            l.IGST,
		})
	}

	return orderapi.Order{
		ID:                  o.ID,
		MerchantID:          o.MerchantID,
		MkpOrderID:          o.MkpOrderID,
		PaymentStatus:       string(o.PaymentStatus),
		TotalAmount:         o.TotalAmount,
		Lines:               lines,
		Currency:            o.Shipping.Currency,
		ShippingPhoneNumber: o.Shipping.PhoneNumber,
		ShippingAddress1:    o.Shipping.Address1,
		ShippingAddress2:    o.Shipping.Address2,
		ShippingAddress3:    o.Shipping.Address3,
		RecipientName:       o.Shipping.RecipientName,
		ShippingCity:        o.Shipping.City,
		ShippingState:       o.Shipping.State,
		ShippingPostalCode:  o.Shipping.PostalCode,
		ShippingCountry:     o.Shipping.Country,
		ShippingMethod:      o.ShippingMethod,
		Source:              o.Shipping.Source,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		PaidDate:            o.PaidDate,
	}
}

func toWireList(orders []*domain.Order) []orderapi.Order {
	out := make([]orderapi.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toWire(o))
	}
	return out
}
