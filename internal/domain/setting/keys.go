package setting

import (
	"strings"

	"coupon-marketplace/internal/pkg/errs"
)

const (
	KeyReservationHoldMinutes = "reservation.hold_minutes"
	KeyOfferEditWindowHours   = "offer.edit_window_hours"
)

const (
	DefaultReservationHoldMinutes = 30
	DefaultOfferEditWindowHours   = 24
)

const MaxKeyLength = 100

var (
	ErrEmptyKey    = errs.Category("setting key must not be empty", errs.ErrValidation)
	ErrKeyTooLong  = errs.Category("setting key is too long", errs.ErrValidation)
	ErrInvalidKey  = errs.Category("setting key must not contain whitespace", errs.ErrValidation)
	ErrKeyNotFound = errs.Category("setting not found", errs.ErrNotFound)
)

func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return ErrInvalidKey
	}
	return nil
}
