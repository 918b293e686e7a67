package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionReportLine aggregates the bookings of one commission rule.
type CommissionReportLine struct {
	CommissionID string          `json:"commission_id"`
	AgentID      string          `json:"agent_id"`
	Name         string          `json:"name"`
	Bookings     int             `json:"bookings"`
	Nights       int             `json:"nights"`
	BookingValue decimal.Decimal `json:"booking_value"`
	Commission   decimal.Decimal `json:"commission"`
}

type AgentCommission struct {
	AgentID    string          `json:"agent_id"`
	Bookings   int             `json:"bookings"`
	Commission decimal.Decimal `json:"commission"`
}

type CommissionReportSummary struct {
	TotalBookings     int             `json:"total_bookings"`
	TotalBookingValue decimal.Decimal `json:"total_booking_value"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	// UnknownRules counts bookings whose commission rule no longer exists.
	UnknownRules int `json:"unknown_rules"`
}

// CommissionReport covers bookings with check-in in [From, To).
type CommissionReport struct {
	From        string                  `json:"from"`
	To          string                  `json:"to"`
	Lines       []CommissionReportLine  `json:"lines"`
	Agents      []AgentCommission       `json:"agents"`
	Summary     CommissionReportSummary `json:"summary"`
	GeneratedAt time.Time               `json:"generated_at"`
}
