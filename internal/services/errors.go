package services

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingPaymentProof = errors.New("please upload the payment proof")
	ErrMissingPickupTime   = errors.New("please choose a pickup time")
	ErrCheckoutInactive    = errors.New("checkout is no longer active")

	ErrEmptyMessage = errors.New("message is empty")
	ErrChatClosed   = errors.New("chat session is closed")

	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrMissingField       = errors.New("name and email are required")
)
