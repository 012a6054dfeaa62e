package session

import "errors"

var (
	ErrInvalidTransition = errors.New("step transition not allowed for the current shop state")
	ErrRequestInFlight   = errors.New("a request for this onboarding is already in progress")
	ErrEmptyShopID       = errors.New("invalid server response: shop id missing")
	ErrNoPendingShop     = errors.New("no shop data waiting for confirmation")
	ErrInvalidShop       = errors.New("invalid shop information")
)
