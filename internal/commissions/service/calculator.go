package service

import (
	"slices"
	"time"

	"resort/pkg/model"
	"resort/pkg/money"

	"github.com/shopspring/decimal"
)

// CalculateCommission returns the payout owed for a booking of bookingValue
// over nights. It is zero when the rule is inactive or either minimum is not
// met, and never negative.
func CalculateCommission(c *model.Commission, bookingValue decimal.Decimal, nights int) decimal.Decimal {
	if c == nil || !c.Active {
		return decimal.Zero
	}
	if bookingValue.LessThan(c.MinimumBookingValue) {
		return decimal.Zero
	}
	if nights < c.MinimumNights {
		return decimal.Zero
	}

	switch c.Type {
	case model.CommissionTypePercentage:
		return money.NonNegative(money.Percent(bookingValue, c.Rate))
	case model.CommissionTypeFixed:
		return money.NonNegative(money.Round(c.FixedAmount))
	default:
		return decimal.Zero
	}
}

// AppliesTo reports whether a booking at resortID for roomTypeID, made at
// the given time, falls under the rule's scope and validity window.
func AppliesTo(c *model.Commission, resortID, roomTypeID string, at time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ValidFrom != nil && at.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && at.After(*c.ValidUntil) {
		return false
	}
	if c.ResortID != "" && c.ResortID != resortID {
		return false
	}
	if len(c.RoomTypeIDs) > 0 && !slices.Contains(c.RoomTypeIDs, roomTypeID) {
		return false
	}
	return true
}
