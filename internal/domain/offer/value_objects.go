package offer

import (
	"time"

	"coupon-marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice        = errs.Category("price cannot be negative", errs.ErrValidation)
	ErrDiscountAboveList    = errs.Category("discounted price cannot exceed original price", errs.ErrValidation)
	ErrInvalidValidity      = errs.Category("validFrom must be before validTo", errs.ErrValidation)
	ErrInvalidTotalUnits    = errs.Category("total units must be positive", errs.ErrValidation)
	ErrEmptyTitle           = errs.Category("offer title cannot be empty", errs.ErrValidation)
	ErrTitleTooLong         = errs.Category("offer title is too long (max 255 characters)", errs.ErrValidation)
	ErrDescriptionTooLong   = errs.Category("offer description is too long (max 2000 characters)", errs.ErrValidation)
	ErrEmptyRejectionReason = errs.Category("rejection reason cannot be empty", errs.ErrValidation)
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
	MaxTotalUnits        = 100000
)

var hundred = decimal.NewFromInt(100)

// Money is a non-negative fixed-point amount with two fractional digits.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, ErrNegativePrice
	}
	return Money{amount: amount.Round(2)}, nil
}

func MustMoney(s string) Money {
	m, err := NewMoney(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.amount }
func (m Money) String() string           { return m.amount.StringFixed(2) }
func (m Money) IsZero() bool             { return m.amount.IsZero() }

func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// DiscountPercent returns round((original-discounted)/original*100, 2), or zero
// when the original price is not positive.
func DiscountPercent(original, discounted Money) decimal.Decimal {
	if !original.amount.IsPositive() {
		return decimal.Zero
	}
	return original.amount.Sub(discounted.amount).
		DivRound(original.amount, 8).
		Mul(hundred).
		Round(2)
}

// ValidityWindow is the closed interval [from, to] during which an offer can be reserved.
type ValidityWindow struct {
	from time.Time
	to   time.Time
}

func NewValidityWindow(from, to time.Time) (ValidityWindow, error) {
	if !from.Before(to) {
		return ValidityWindow{}, ErrInvalidValidity
	}
	return ValidityWindow{from: from, to: to}, nil
}

func (w ValidityWindow) From() time.Time { return w.from }
func (w ValidityWindow) To() time.Time   { return w.to }

func (w ValidityWindow) Contains(t time.Time) bool {
	return !t.Before(w.from) && !t.After(w.to)
}

func (w ValidityWindow) HasEndedAt(t time.Time) bool {
	return w.to.Before(t)
}
