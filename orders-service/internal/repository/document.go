package repository

import (
	"fmt"
	"time"

	"github.com/fjod/tradecart/orders-service/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type lineDoc struct {
	SKU             string               `bson:"sku"`
	SellerSKU       string               `bson:"sellerSku"`
	Quantity        int                  `bson:"quantity"`
	QuantityShipped int                  `bson:"quantityShipped"`
	ConsumerPrice   primitive.Decimal128 `bson:"consumerPrice"`
	Title           string               `bson:"title"`
	Source          string               `bson:"source"`
	CGST            primitive.Decimal128 `bson:"cgst"`
	SGST            primitive.Decimal128 `bson:"sgst"`
	IGST            primitive.Decimal128 `bson:"igst"`
}

// orderDoc field names are the ones domain.Patch keys refer to.
type orderDoc struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty"`
	MerchantID          string               `bson:"merchantId"`
	MkpOrderID          string               `bson:"mkpOrderId"`
	PStatus             string               `bson:"pStatus"`
	TotalAmount         primitive.Decimal128 `bson:"total_amount"`
	OrderDetails        []lineDoc            `bson:"orderDetails"`
	Currency            string               `bson:"currency"`
	ShippingPhoneNumber string               `bson:"shippingPhoneNumber"`
	ShippingAddress1    string               `bson:"shippingAddress1"`
	ShippingAddress2    string               `bson:"shippingAddress2"`
	ShippingAddress3    string               `bson:"shippingAddress3"`
	RecipientName       string               `bson:"recipientName"`
	ShippingCity        string               `bson:"shippingCity"`
	ShippingState       string               `bson:"shippingState"`
	ShippingPostalCode  string               `bson:"shippingPostalCode"`
	ShippingCountry     string               `bson:"shippingCountry"`
	ShippingMethod      string               `bson:"shippingMethod"`
	Source              int                  `bson:"source"`
	CreatedAt           time.Time            `bson:"createdAt"`
	UpdatedAt           *time.Time           `bson:"updatedAt,omitempty"`
	PaidDate            *time.Time           `bson:"paidDate,omitempty"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode amount %s: %w", v, err)
	}
	return d, nil
}

func toDoc(o *domain.Order) (*orderDoc, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return nil, err
	}

	lines := make([]lineDoc, 0, len(o.Lines))
	for _, l := range o.Lines {
		ld := lineDoc{
			SKU:             l.SKU,
			SellerSKU:       l.SellerSKU,
			Quantity:        l.Quantity,
			QuantityShipped: l.Quantity,
			Title:           l.Title,
			Source:          l.Source,
		}
		if ld.ConsumerPrice, err = toDecimal128(l.UnitPrice); err != nil {
			return nil, err
		}
		if ld.CGST, err = toDecimal128(l.CGST); err != nil {
			return nil, err
		}
		if ld.SGST, err = toDecimal128(l.SGST); err != nil {
			return nil, err
		}
		if ld.IGST, err = toDecimal128(l.IGST); err != nil {
			return nil, err
		}
		lines = append(lines, ld)
	}

	doc := &orderDoc{
		MerchantID:          o.MerchantID,
		MkpOrderID:          o.MkpOrderID,
		PStatus:             string(o.PaymentStatus),
		TotalAmount:         total,
		OrderDetails:        lines,
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
	if o.ID != "" {
		id, err := primitive.ObjectIDFromHex(o.ID)
		if err != nil {
			return nil, ErrInvalidOrderID
		}
		doc.ID = id
	}
	return doc, nil
}

func (d *orderDoc) toDomain() (*domain.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(d.OrderDetails))
	for _, ld := range d.OrderDetails {
		l := domain.OrderLine{
			SKU:       ld.SKU,
			SellerSKU: ld.SellerSKU,
			Quantity:  ld.Quantity,
			Title:     ld.Title,
			Source:    ld.Source,
		}
		if l.UnitPrice, err = fromDecimal128(ld.ConsumerPrice); err != nil {
			return nil, err
		}
		if l.CGST, err = fromDecimal128(ld.CGST); err != nil {
			return nil, err
		}
		if l.SGST, err = fromDecimal128(ld.SGST); err != nil {
			return nil, err
		}
		if l.IGST, err = fromDecimal128(ld.IGST); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	return &domain.Order{
		ID:            d.ID.Hex(),
		MerchantID:    d.MerchantID,
		MkpOrderID:    d.MkpOrderID,
		Lines:         lines,
		TotalAmount:   total,
		PaymentStatus: domain.PaymentStatus(d.PStatus),
		Shipping: domain.ShippingDetails{
			Currency:      d.Currency,
			PhoneNumber:   d.ShippingPhoneNumber,
			Address1:      d.ShippingAddress1,
			Address2:      d.ShippingAddress2,
			Address3:      d.ShippingAddress3,
			RecipientName: d.RecipientName,
			City:          d.ShippingCity,
			State:         d.ShippingState,
			PostalCode:    d.ShippingPostalCode,
			Country:       d.ShippingCountry,
			Source:        d.Source,
		},
		ShippingMethod: d.ShippingMethod,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		PaidDate:       d.PaidDate,
	}, nil
}
