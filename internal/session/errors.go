package session

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionClosed        = errors.New("session is closed")
	ErrNotAuthenticated     = errors.New("please log in first")
	ErrAlreadyAuthenticated = errors.New("already logged in")
	ErrInvalidView          = errors.New("unknown view")
	ErrSellerNotFound       = errors.New("seller not found")
	ErrItemNotFound         = errors.New("menu item not found")
	ErrNoActiveChat         = errors.New("no chat is open")
)

// NoticeCheckoutExpired is shown when the payment countdown runs out.
const NoticeCheckoutExpired = "Waktu pembayaran habis. Pesanan dibatalkan."
