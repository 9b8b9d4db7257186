package offer

import (
	"strings"
	"time"

	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOfferNotActive     = errs.Category("offer is not active", errs.ErrInvalidState)
	ErrInvalidTransition  = errs.Category("invalid offer status transition", errs.ErrInvalidState)
	ErrNotEditable        = errs.Category("offer cannot be edited in its current status", errs.ErrInvalidState)
	ErrSoldOut            = errs.Category("offer is sold out", errs.ErrConflict)
	ErrInventoryInvariant = errs.Category("offer inventory invariant violated", errs.ErrConflict)
	ErrEditWindowExpired  = errs.Category("offer edit window has expired", errs.ErrPolicyViolation)
	ErrSoldInventory      = errs.Category("offer with sold coupons cannot be deleted", errs.ErrPolicyViolation)
)

type Offer struct {
	id              uuid.UUID
	merchantID      uuid.UUID
	title           string
	description     string
	originalPrice   Money
	discountedPrice Money
	totalUnits      int
	availableUnits  int
	validity        ValidityWindow
	status          Status
	approvedBy      *uuid.UUID
	approvedAt      *time.Time
	rejectionReason *string
	createdAt       time.Time
	updatedAt       time.Time
}

// Details holds the merchant-editable part of an offer.
type Details struct {
	Title           string
	Description     string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	ValidFrom       time.Time
	ValidTo         time.Time
}

type validDetails struct {
	title           string
	description     string
	originalPrice   Money
	discountedPrice Money
	validity        ValidityWindow
}

func NewOffer(merchantID uuid.UUID, d Details, totalUnits int, now time.Time) (*Offer, error) {
	if totalUnits <= 0 || totalUnits > MaxTotalUnits {
		return nil, ErrInvalidTotalUnits
	}

	v, err := validateDetails(d)
	if err != nil {
		return nil, err
	}

	return &Offer{
		id:              uuid.New(),
		merchantID:      merchantID,
		title:           v.title,
		description:     v.description,
		originalPrice:   v.originalPrice,
		discountedPrice: v.discountedPrice,
		totalUnits:      totalUnits,
		availableUnits:  totalUnits,
		validity:        v.validity,
		status:          StatusPending,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructOffer(
	id, merchantID uuid.UUID,
	title, description string,
	originalPrice, discountedPrice Money,
	totalUnits, availableUnits int,
	validity ValidityWindow,
	status Status,
	approvedBy *uuid.UUID,
	approvedAt *time.Time,
	rejectionReason *string,
	createdAt, updatedAt time.Time,
) *Offer {
	return &Offer{
		id:              id,
		merchantID:      merchantID,
		title:           title,
		description:     description,
		originalPrice:   originalPrice,
		discountedPrice: discountedPrice,
		totalUnits:      totalUnits,
		availableUnits:  availableUnits,
		validity:        validity,
		status:          status,
		approvedBy:      approvedBy,
		approvedAt:      approvedAt,
		rejectionReason: rejectionReason,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func validateDetails(d Details) (validDetails, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return validDetails{}, ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return validDetails{}, ErrTitleTooLong
	}
	description := strings.TrimSpace(d.Description)
	if len(description) > MaxDescriptionLength {
		return validDetails{}, ErrDescriptionTooLong
	}

	original, err := NewMoney(d.OriginalPrice)
	if err != nil {
		return validDetails{}, err
	}
	discounted, err := NewMoney(d.DiscountedPrice)
	if err != nil {
		return validDetails{}, err
	}
	if discounted.GreaterThan(original) {
		return validDetails{}, ErrDiscountAboveList
	}

	validity, err := NewValidityWindow(d.ValidFrom, d.ValidTo)
	if err != nil {
		return validDetails{}, err
	}

	return validDetails{
		title:           title,
		description:     description,
		originalPrice:   original,
		discountedPrice: discounted,
		validity:        validity,
	}, nil
}

// CheckReservable fails with ErrOfferNotActive unless the offer is Active and
// now lies inside the validity window.
func (o *Offer) CheckReservable(now time.Time) error {
	if o.status != StatusActive || !o.validity.Contains(now) {
		return ErrOfferNotActive
	}
	return nil
}

// HoldUnit applies the counter side of Available -> Reserved.
func (o *Offer) HoldUnit(now time.Time) error {
	if o.availableUnits <= 0 {
		return ErrSoldOut
	}
	o.availableUnits--
	o.updatedAt = now
	return nil
}

// ReleaseUnit applies the counter side of Reserved -> Available.
func (o *Offer) ReleaseUnit(now time.Time) error {
	if o.availableUnits >= o.totalUnits {
		return ErrInventoryInvariant
	}
	o.availableUnits++
	o.updatedAt = now
	return nil
}

func (o *Offer) Approve(adminID uuid.UUID, now time.Time) error {
	if err := o.transition(StatusApproved, now); err != nil {
		return err
	}
	o.approvedBy = &adminID
	o.approvedAt = &now
	o.rejectionReason = nil
	return nil
}

func (o *Offer) Reject(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyRejectionReason
	}
	if err := o.transition(StatusRejected, now); err != nil {
		return err
	}
	o.rejectionReason = &reason
	return nil
}

func (o *Offer) Activate(now time.Time) error {
	if o.status != StatusApproved {
		return ErrInvalidTransition
	}
	return o.transition(StatusActive, now)
}

func (o *Offer) Suspend(now time.Time) error {
	return o.transition(StatusSuspended, now)
}

func (o *Offer) Resume(now time.Time) error {
	if o.status != StatusSuspended {
		return ErrInvalidTransition
	}
	return o.transition(StatusActive, now)
}

// Expire moves an Active offer whose validity window has closed to Expired.
func (o *Offer) Expire(now time.Time) error {
	if o.status != StatusActive || !o.validity.HasEndedAt(now) {
		return ErrInvalidTransition
	}
	return o.transition(StatusExpired, now)
}

// Edit replaces the merchant details. Edits are permitted only until
// createdAt+editWindow, and any approved, active or rejected offer goes back
// to Pending for re-review.
func (o *Offer) Edit(d Details, editWindow time.Duration, now time.Time) error {
	if now.After(o.createdAt.Add(editWindow)) {
		return ErrEditWindowExpired
	}
	if !o.status.IsEditable() {
		return ErrNotEditable
	}

	v, err := validateDetails(d)
	if err != nil {
		return err
	}

	o.title = v.title
	o.description = v.description
	o.originalPrice = v.originalPrice
	o.discountedPrice = v.discountedPrice
	o.validity = v.validity
	o.status = StatusPending
	o.approvedBy = nil
	o.approvedAt = nil
	o.rejectionReason = nil
	o.updatedAt = now
	return nil
}

func (o *Offer) CheckDeletable() error {
	if o.SoldUnits() > 0 {
		return ErrSoldInventory
	}
	return nil
}

func (o *Offer) transition(next Status, now time.Time) error {
	if !o.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.status = next
	o.updatedAt = now
	return nil
}

func (o *Offer) DiscountPercent() decimal.Decimal {
	return DiscountPercent(o.originalPrice, o.discountedPrice)
}

func (o *Offer) SoldUnits() int { return o.totalUnits - o.availableUnits }

func (o *Offer) ID() uuid.UUID            { return o.id }
func (o *Offer) MerchantID() uuid.UUID    { return o.merchantID }
func (o *Offer) Title() string            { return o.title }
func (o *Offer) Description() string      { return o.description }
func (o *Offer) OriginalPrice() Money     { return o.originalPrice }
func (o *Offer) DiscountedPrice() Money   { return o.discountedPrice }
func (o *Offer) TotalUnits() int          { return o.totalUnits }
func (o *Offer) AvailableUnits() int      { return o.availableUnits }
func (o *Offer) Validity() ValidityWindow { return o.validity }
func (o *Offer) Status() Status           { return o.status }
func (o *Offer) ApprovedBy() *uuid.UUID   { return ptr.Copy(o.approvedBy) }
func (o *Offer) ApprovedAt() *time.Time   { return ptr.Copy(o.approvedAt) }
func (o *Offer) RejectionReason() *string { return ptr.Copy(o.rejectionReason) }
func (o *Offer) CreatedAt() time.Time     { return o.createdAt }
func (o *Offer) UpdatedAt() time.Time     { return o.updatedAt }
