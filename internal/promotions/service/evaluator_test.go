package service

import (
	"errors"
	"testing"
	"time"

	promoerrors "resort/internal/promotions/errors"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
)

var now = time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func basePromotion() *model.Promotion {
	return &model.Promotion{
		ID:     "promo-1",
		Code:   "SUMMER15",
		Type:   model.PromotionTypePercentage,
		Value:  decimal.NewFromInt(15),
		Active: true,
	}
}

func baseStay() Eligibility {
	return Eligibility{
		ResortID:   "resort-1",
		RatePlanID: "plan-1",
		RoomTypeID: "villa",
		Amount:     decimal.NewFromInt(900),
		Nights:     3,
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *model.Promotion)
		want   error
	}{
		{"applies", func(p *model.Promotion) {}, nil},
		{"inactive", func(p *model.Promotion) { p.Active = false }, promoerrors.ErrInactive},
		{"not started", func(p *model.Promotion) { p.ValidFrom = timePtr(now.Add(time.Hour)) }, promoerrors.ErrNotStarted},
		{"expired", func(p *model.Promotion) { p.ValidUntil = timePtr(now.Add(-time.Hour)) }, promoerrors.ErrExpired},
		{"inside window", func(p *model.Promotion) {
			p.ValidFrom = timePtr(now.Add(-time.Hour))
			p.ValidUntil = timePtr(now.Add(time.Hour))
		}, nil},
		{"exhausted", func(p *model.Promotion) { p.MaxUses = intPtr(1); p.CurrentUses = 1 }, promoerrors.ErrExhausted},
		{"uses left", func(p *model.Promotion) { p.MaxUses = intPtr(2); p.CurrentUses = 1 }, nil},
		{"below minimum amount", func(p *model.Promotion) { p.MinimumAmount = decimal.NewFromInt(1000) }, promoerrors.ErrBelowMinimumAmount},
		{"other rate plan", func(p *model.Promotion) { p.RatePlanIDs = []string{"plan-2"} }, promoerrors.ErrRatePlanNotEligible},
		{"listed rate plan", func(p *model.Promotion) { p.RatePlanIDs = []string{"plan-2", "plan-1"} }, nil},
		{"other room type", func(p *model.Promotion) { p.RoomTypeIDs = []string{"suite"} }, promoerrors.ErrRoomTypeNotEligible},
		{"other resort", func(p *model.Promotion) { p.ResortID = "resort-2" }, promoerrors.ErrResortNotEligible},
		{"below minimum nights", func(p *model.Promotion) { p.MinimumNights = 4 }, promoerrors.ErrBelowMinimumNights},
		{"inactive reported before exhausted", func(p *model.Promotion) {
			p.Active = false
			p.MaxUses = intPtr(1)
			p.CurrentUses = 1
		}, promoerrors.ErrInactive},
		{"exhausted reported before scope", func(p *model.Promotion) {
			p.MaxUses = intPtr(1)
			p.CurrentUses = 1
			p.RatePlanIDs = []string{"plan-2"}
		}, promoerrors.ErrExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePromotion()
			tt.mutate(p)
			err := Check(p, baseStay(), now)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIsValid_CapReachedRegardlessOfOtherFields(t *testing.T) {
	p := basePromotion()
	p.MaxUses = intPtr(1)
	p.CurrentUses = 1
	p.MinimumAmount = decimal.Zero
	p.ValidFrom = timePtr(now.Add(-24 * time.Hour))
	p.ValidUntil = timePtr(now.Add(24 * time.Hour))

	if IsValid(p, baseStay(), now) {
		t.Error("promotion with max_uses=1 and current_uses=1 must be invalid")
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		value  string
		amount string
		want   string
	}{
		{"percentage", model.PromotionTypePercentage, "15", "900", "135"},
		{"percentage rounds half up", model.PromotionTypePercentage, "12.5", "0.2", "0.03"},
		{"percentage capped at amount", model.PromotionTypePercentage, "150", "80", "80"},
		{"fixed", model.PromotionTypeFixed, "50", "900", "50"},
		{"fixed capped at amount", model.PromotionTypeFixed, "500", "120.40", "120.40"},
		{"zero amount", model.PromotionTypeFixed, "50", "0", "0"},
		{"negative amount", model.PromotionTypePercentage, "10", "-10", "0"},
		{"unknown type", "bogus", "10", "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.Promotion{Type: tt.kind, Value: decimal.RequireFromString(tt.value)}
			got := CalculateDiscount(p, decimal.RequireFromString(tt.amount))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("CalculateDiscount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCalculateDiscount_NilPromotion(t *testing.T) {
	if got := CalculateDiscount(nil, decimal.NewFromInt(100)); !got.IsZero() {
		t.Errorf("CalculateDiscount(nil) = %s, want 0", got)
	}
}
