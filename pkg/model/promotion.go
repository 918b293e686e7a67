package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PromotionTypePercentage = "percentage"
	PromotionTypeFixed      = "fixed"

	CommissionTypePercentage = "percentage"
	CommissionTypeFixed      = "fixed_amount"
)

type Promotion struct {
	ID               string          `json:"id,omitempty" bson:"_id,omitempty"`
	Code             string          `json:"code" bson:"code" validate:"required,min=3,max=32,alphanum"`
	ResortID         string          `json:"resort_id,omitempty" bson:"resort_id,omitempty" validate:"omitempty,mongodb"`
	Type             string          `json:"type" bson:"type" validate:"required,oneof=percentage fixed"`
	Value            decimal.Decimal `json:"value" bson:"value" validate:"gt=0"`
	ValidFrom        *time.Time      `json:"valid_from,omitempty" bson:"valid_from,omitempty"`
	ValidUntil       *time.Time      `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
	MaxUses          *int            `json:"max_uses,omitempty" bson:"max_uses,omitempty" validate:"omitempty,min=1"`
	CurrentUses      int             `json:"current_uses" bson:"current_uses" validate:"min=0"`
	PerCustomerLimit *int            `json:"per_customer_limit,omitempty" bson:"per_customer_limit,omitempty" validate:"omitempty,min=1"`
	MinimumAmount    decimal.Decimal `json:"minimum_amount" bson:"minimum_amount" validate:"gte=0"`
	MinimumNights    int             `json:"minimum_nights" bson:"minimum_nights" validate:"min=0"`
	RatePlanIDs      []string        `json:"rate_plan_ids,omitempty" bson:"rate_plan_ids,omitempty" validate:"omitempty,dive,mongodb"`
	RoomTypeIDs      []string        `json:"room_type_ids,omitempty" bson:"room_type_ids,omitempty" validate:"omitempty,dive,max=64"`
	Active           bool            `json:"active" bson:"active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Commission is an agent payout rule. Amounts owed are derived on demand and
// never stored per booking.
type Commission struct {
	ID                  string          `json:"id,omitempty" bson:"_id,omitempty"`
	AgentID             string          `json:"agent_id" bson:"agent_id" validate:"required,max=64"`
	Name                string          `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Type                string          `json:"commission_type" bson:"commission_type" validate:"required,oneof=percentage fixed_amount"`
	Rate                decimal.Decimal `json:"commission_rate" bson:"commission_rate" validate:"gte=0,lte=100"`
	FixedAmount         decimal.Decimal `json:"fixed_amount" bson:"fixed_amount" validate:"gte=0"`
	MinimumBookingValue decimal.Decimal `json:"minimum_booking_value" bson:"minimum_booking_value" validate:"gte=0"`
	MinimumNights       int             `json:"minimum_nights" bson:"minimum_nights" validate:"min=0"`
	ResortID            string          `json:"resort_id,omitempty" bson:"resort_id,omitempty" validate:"omitempty,mongodb"`
	RoomTypeIDs         []string        `json:"room_type_ids,omitempty" bson:"room_type_ids,omitempty" validate:"omitempty,dive,max=64"`
	ValidFrom           *time.Time      `json:"valid_from,omitempty" bson:"valid_from,omitempty"`
	ValidUntil          *time.Time      `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
	Active              bool            `json:"active" bson:"active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
