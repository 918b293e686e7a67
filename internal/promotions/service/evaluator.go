package service

import (
	"slices"
	"time"

	promoerrors "resort/internal/promotions/errors"
	"resort/pkg/model"
	"resort/pkg/money"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Eligibility describes the stay a promotion is evaluated against.
type Eligibility struct {
	ResortID   string
	RatePlanID string
	RoomTypeID string
	Amount     decimal.Decimal
	Nights     int
}

// Check returns nil when p applies to e at now, otherwise the first failing
// reason in this order: active, date window, usage cap, minimum amount,
// rate plan, room type, resort, minimum nights.
func Check(p *model.Promotion, e Eligibility, now time.Time) error {
	if !p.Active {
		return promoerrors.ErrInactive
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return promoerrors.ErrNotStarted
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return promoerrors.ErrExpired
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return promoerrors.ErrExhausted
	}
	if p.MinimumAmount.IsPositive() && e.Amount.LessThan(p.MinimumAmount) {
		return promoerrors.ErrBelowMinimumAmount
	}
	if len(p.RatePlanIDs) > 0 && !slices.Contains(p.RatePlanIDs, e.RatePlanID) {
		return promoerrors.ErrRatePlanNotEligible
	}
	if len(p.RoomTypeIDs) > 0 && !slices.Contains(p.RoomTypeIDs, e.RoomTypeID) {
		return promoerrors.ErrRoomTypeNotEligible
	}
	if p.ResortID != "" && p.ResortID != e.ResortID {
		return promoerrors.ErrResortNotEligible
	}
	if p.MinimumNights > 0 && e.Nights < p.MinimumNights {
		return promoerrors.ErrBelowMinimumNights
	}
	return nil
}

func IsValid(p *model.Promotion, e Eligibility, now time.Time) bool {
	return Check(p, e, now) == nil
}

// CalculateDiscount never exceeds amount and is never negative.
func CalculateDiscount(p *model.Promotion, amount decimal.Decimal) decimal.Decimal {
	if p == nil || !amount.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch p.Type {
	case model.PromotionTypePercentage:
		discount = amount.Mul(p.Value).Div(hundred)
	case model.PromotionTypeFixed:
		discount = p.Value
	default:
		return decimal.Zero
	}

	return money.Round(money.NonNegative(money.Min(discount, amount)))
}
