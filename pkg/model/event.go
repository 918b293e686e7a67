package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventBookingNoShow    = "booking.no_show"
)

// BookingEvent is the payload published on every booking status change.
type BookingEvent struct {
	Type           string          `json:"type"`
	BookingID      string          `json:"booking_id"`
	Reference      string          `json:"reference"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	ResortID       string          `json:"resort_id"`
	RoomTypeID     string          `json:"room_type_id"`
	RatePlanID     string          `json:"rate_plan_id"`
	CommissionID   string          `json:"commission_id,omitempty"`
	PromotionID    string          `json:"promotion_id,omitempty"`
	CheckIn        time.Time       `json:"check_in"`
	CheckOut       time.Time       `json:"check_out"`
	Nights         int             `json:"nights"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	BookedAt       time.Time       `json:"booked_at"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *Booking, previousStatus string) BookingEvent {
	return BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		Reference:      b.Reference,
		Status:         b.Status,
		PreviousStatus: previousStatus,
		ResortID:       b.ResortID,
		RoomTypeID:     b.RoomTypeID,
		RatePlanID:     b.RatePlanID,
		CommissionID:   b.CommissionID,
		PromotionID:    b.PromotionID,
		CheckIn:        b.CheckIn,
		CheckOut:       b.CheckOut,
		Nights:         b.Nights,
		Subtotal:       b.Subtotal,
		Total:          b.Total,
		BookedAt:       b.CreatedAt,
		OccurredAt:     time.Now().UTC(),
	}
}
