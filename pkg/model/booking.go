package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no_show"
)

const (
	ItemKindRoom       = "room"
	ItemKindDiscount   = "discount"
	ItemKindTax        = "tax"
	ItemKindServiceFee = "service_fee"
	ItemKindTransfer   = "transfer"
)

var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

// CanTransition reports whether a booking may move from one status to another.
// Terminal statuses have no outgoing transitions.
func CanTransition(from, to string) bool {
	return slices.Contains(bookingTransitions[from], to)
}

func IsTerminalStatus(status string) bool {
	_, ok := bookingTransitions[status]
	return !ok
}

type BookingItem struct {
	Kind        string          `json:"kind" bson:"kind"`
	Description string          `json:"description" bson:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price" bson:"unit_price"`
	Quantity    int             `json:"quantity" bson:"quantity"`
	Total       decimal.Decimal `json:"total" bson:"total"`
}

type Guest struct {
	Name    string `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" bson:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Country string `json:"country,omitempty" bson:"country,omitempty" validate:"omitempty,iso3166_1_alpha2"`
}

type Booking struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	Reference string `json:"reference" bson:"reference"`
	UserID    string `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Guest     Guest  `json:"guest" bson:"guest"`

	ResortID   string `json:"resort_id" bson:"resort_id"`
	RoomTypeID string `json:"room_type_id" bson:"room_type_id"`
	RatePlanID string `json:"rate_plan_id" bson:"rate_plan_id"`

	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
	Nights   int       `json:"nights" bson:"nights"`
	Adults   int       `json:"adults" bson:"adults"`
	Children int       `json:"children" bson:"children"`

	RoomSubtotal   decimal.Decimal `json:"room_subtotal" bson:"room_subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount" bson:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal" bson:"subtotal"`
	TaxTotal       decimal.Decimal `json:"tax_total" bson:"tax_total"`
	ServiceFee     decimal.Decimal `json:"service_fee" bson:"service_fee"`
	TransferTotal  decimal.Decimal `json:"transfer_total" bson:"transfer_total"`
	Total          decimal.Decimal `json:"total" bson:"total"`
	DepositAmount  decimal.Decimal `json:"deposit_amount" bson:"deposit_amount"`
	CurrencyCode   string          `json:"currency_code" bson:"currency_code"`
	CurrencyRate   decimal.Decimal `json:"currency_rate" bson:"currency_rate"`

	Status        string        `json:"status" bson:"status"`
	PromotionID   string        `json:"promotion_id,omitempty" bson:"promotion_id,omitempty"`
	PromotionCode string        `json:"promotion_code,omitempty" bson:"promotion_code,omitempty"`
	TransferID    string        `json:"transfer_id,omitempty" bson:"transfer_id,omitempty"`
	CommissionID  string        `json:"commission_id,omitempty" bson:"commission_id,omitempty"`
	Items         []BookingItem `json:"items" bson:"items"`

	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// BookingRequest is the client payload for quotes and new bookings.
// Dates are calendar days in YYYY-MM-DD form.
type BookingRequest struct {
	RatePlanID    string `json:"rate_plan_id" validate:"required,mongodb"`
	CheckIn       string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut      string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults        int    `json:"adults" validate:"required,min=1,max=20"`
	Children      int    `json:"children" validate:"min=0,max=20"`
	Guest         Guest  `json:"guest"`
	UserID        string `json:"user_id,omitempty" validate:"omitempty,max=64"`
	PromotionCode string `json:"promotion_code,omitempty" validate:"omitempty,min=3,max=32"`
	TransferID    string `json:"transfer_id,omitempty" validate:"omitempty,mongodb"`
	CommissionID  string `json:"commission_id,omitempty" validate:"omitempty,mongodb"`
	CurrencyCode  string `json:"currency_code,omitempty" validate:"omitempty,iso4217"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
