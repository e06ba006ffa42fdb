package service

import "github.com/fjod/tradecart/pkg/apperr"

var (
	ErrNotOrderOwner      = apperr.New(apperr.Forbidden, "order does not belong to user")
	ErrOrderNotPayable    = apperr.New(apperr.InvalidState, "order is not awaiting payment")
	ErrInvalidAmount      = apperr.New(apperr.Validation, "invalid total amount in order details")
	ErrMissingContactInfo = apperr.New(apperr.Validation, "could not determine phone number and email for payment")
	ErrNotPaymentOwner    = apperr.New(apperr.Forbidden, "payment belongs to another user")
	ErrInvalidWebhookBody = apperr.New(apperr.Validation, "invalid JSON payload")
)
