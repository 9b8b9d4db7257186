package coupon

import (
	"time"

	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCode       = errs.Category("invalid coupon code format", errs.ErrValidation)
	ErrInvalidTransition = errs.Category("invalid coupon status transition", errs.ErrInvalidState)
	ErrNotHolder         = errs.Category("coupon is not held by this customer", errs.ErrInvalidState)
)

// Coupon is one redeemable unit of an offer. A hold is not a separate entity:
// it is the Reserved status plus holderID and reservedAt on the unit itself.
type Coupon struct {
	id             uuid.UUID
	offerID        uuid.UUID
	code           Code
	status         Status
	holderID       *uuid.UUID
	reservedAt     *time.Time
	purchasedAt    *time.Time
	usedAt         *time.Time
	purchaseID     *uuid.UUID
	purchaseAmount *decimal.Decimal
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

func NewCoupon(offerID uuid.UUID, code Code, now time.Time) *Coupon {
	return &Coupon{
		id:        uuid.New(),
		offerID:   offerID,
		code:      code,
		status:    StatusAvailable,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
}

// NewBatch creates count Available units with freshly generated, distinct codes.
func NewBatch(offerID uuid.UUID, count int, now time.Time) ([]*Coupon, error) {
	units := make([]*Coupon, 0, count)
	seen := make(map[Code]struct{}, count)
	for len(units) < count {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		units = append(units, NewCoupon(offerID, code, now))
	}
	return units, nil
}

func ReconstructCoupon(
	id, offerID uuid.UUID,
	code Code,
	status Status,
	holderID *uuid.UUID,
	reservedAt, purchasedAt, usedAt *time.Time,
	purchaseID *uuid.UUID,
	purchaseAmount *decimal.Decimal,
	version int64,
	createdAt, updatedAt time.Time,
) *Coupon {
	return &Coupon{
		id:             id,
		offerID:        offerID,
		code:           code,
		status:         status,
		holderID:       holderID,
		reservedAt:     reservedAt,
		purchasedAt:    purchasedAt,
		usedAt:         usedAt,
		purchaseID:     purchaseID,
		purchaseAmount: purchaseAmount,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Reserve: Available -> Reserved.
func (c *Coupon) Reserve(customerID uuid.UUID, now time.Time) error {
	if err := c.checkTransition(StatusReserved); err != nil {
		return err
	}
	c.status = StatusReserved
	c.holderID = &customerID
	c.reservedAt = &now
	c.updatedAt = now
	return nil
}

// Release: Reserved -> Available, clearing the hold in one step.
func (c *Coupon) Release(now time.Time) error {
	if err := c.checkTransition(StatusAvailable); err != nil {
		return err
	}
	c.status = StatusAvailable
	c.holderID = nil
	c.reservedAt = nil
	c.updatedAt = now
	return nil
}

// Purchase: Reserved -> Purchased, only for the current holder.
func (c *Coupon) Purchase(customerID, purchaseID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	if err := c.checkTransition(StatusPurchased); err != nil {
		return err
	}
	if !c.IsHeldBy(customerID) {
		return ErrNotHolder
	}
	c.status = StatusPurchased
	c.purchasedAt = &now
	c.purchaseID = &purchaseID
	c.purchaseAmount = &amount
	c.updatedAt = now
	return nil
}

// MarkUsed: Purchased -> Used, only for the current holder.
func (c *Coupon) MarkUsed(customerID uuid.UUID, now time.Time) error {
	if err := c.checkTransition(StatusUsed); err != nil {
		return err
	}
	if !c.IsHeldBy(customerID) {
		return ErrNotHolder
	}
	c.status = StatusUsed
	c.usedAt = &now
	c.updatedAt = now
	return nil
}

// Expire: Available -> Expired (terminal).
func (c *Coupon) Expire(now time.Time) error {
	if err := c.checkTransition(StatusExpired); err != nil {
		return err
	}
	c.status = StatusExpired
	c.updatedAt = now
	return nil
}

func (c *Coupon) checkTransition(next Status) error {
	if !c.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	return nil
}

func (c *Coupon) IsHeldBy(customerID uuid.UUID) bool {
	return c.holderID != nil && *c.holderID == customerID
}

func (c *Coupon) IsReservedBy(customerID uuid.UUID) bool {
	return c.status == StatusReserved && c.IsHeldBy(customerID)
}

// HoldExpiresAt is reservedAt+hold, or the zero time when the unit is not on hold.
func (c *Coupon) HoldExpiresAt(hold time.Duration) time.Time {
	if c.status != StatusReserved || c.reservedAt == nil {
		return time.Time{}
	}
	return c.reservedAt.Add(hold)
}

// IsHoldStale reports whether the hold was placed strictly before cutoff
// (cutoff = now - hold duration), i.e. it is due for reclaim.
func (c *Coupon) IsHoldStale(cutoff time.Time) bool {
	return c.status == StatusReserved && c.reservedAt != nil && c.reservedAt.Before(cutoff)
}

func (c *Coupon) ID() uuid.UUID                    { return c.id }
func (c *Coupon) OfferID() uuid.UUID               { return c.offerID }
func (c *Coupon) Code() Code                       { return c.code }
func (c *Coupon) Status() Status                   { return c.status }
func (c *Coupon) HolderID() *uuid.UUID             { return ptr.Copy(c.holderID) }
func (c *Coupon) ReservedAt() *time.Time           { return ptr.Copy(c.reservedAt) }
func (c *Coupon) PurchasedAt() *time.Time          { return ptr.Copy(c.purchasedAt) }
func (c *Coupon) UsedAt() *time.Time               { return ptr.Copy(c.usedAt) }
func (c *Coupon) PurchaseID() *uuid.UUID           { return ptr.Copy(c.purchaseID) }
func (c *Coupon) PurchaseAmount() *decimal.Decimal { return ptr.Copy(c.purchaseAmount) }
func (c *Coupon) Version() int64                   { return c.version }
func (c *Coupon) CreatedAt() time.Time             { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time             { return c.updatedAt }
