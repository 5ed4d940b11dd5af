package services

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrItemNotFound        = errors.New("item not found")
	ErrVendorNotConfigured = errors.New("vendor not configured for slot")
	ErrOrderWindowClosed   = errors.New("order window closed")
	ErrInvalidSelection    = errors.New("invalid selection")
	ErrNoVendorsAvailable  = errors.New("no vendors available")
	ErrVendorKindMismatch  = errors.New("vendor kind mismatch")
	ErrVendorChanged       = errors.New("vendor of the day changed")
	ErrUnknownCommand      = errors.New("unknown command")
)
