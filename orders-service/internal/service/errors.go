package service

import "github.com/fjod/tradecart/pkg/apperr"

var (
	ErrEmptyCart        = apperr.New(apperr.Validation, "cart is empty")
	ErrProductsNotFound = apperr.New(apperr.NotFound, "no product details found")
	ErrNotOrderOwner    = apperr.New(apperr.Forbidden, "order belongs to another user")
)
