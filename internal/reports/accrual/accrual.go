// Package accrual keeps a running per-agent commission total from booking
// lifecycle events. It is a live view only; the authoritative figures come
// from the commission report.
package accrual

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	commissionservice "resort/internal/commissions/service"
	apperrors "resort/pkg/errors"
	"resort/pkg/kafka"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
)

type Snapshot struct {
	Agents          []model.AgentCommission `json:"agents"`
	TotalCommission decimal.Decimal         `json:"total_commission"`
	OpenBookings    int                     `json:"open_bookings"`
	EventsProcessed int64                   `json:"events_processed"`
	UpdatedAt       *time.Time              `json:"updated_at,omitempty"`
}

type entry struct {
	agentID  string
	amount   decimal.Decimal
	reversed bool
}

type Accrual struct {
	commissions commissionservice.CommissionService
	log         *logger.Logger

	mu        sync.RWMutex
	bookings  map[string]*entry
	agents    map[string]*model.AgentCommission
	processed int64
	updatedAt time.Time
	now       func() time.Time
}

func New(commissions commissionservice.CommissionService, log *logger.Logger) *Accrual {
	return &Accrual{
		commissions: commissions,
		log:         log,
		bookings:    map[string]*entry{},
		agents:      map[string]*model.AgentCommission{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Handle consumes one booking event. Redelivered events are absorbed: a
// booking accrues at most once and is reversed at most once.
func (a *Accrual) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	defer a.touch()

	if event.CommissionID == "" || event.BookingID == "" {
		return nil
	}

	switch event.Type {
	case model.EventBookingConfirmed:
		rule, err := a.commissions.GetByID(ctx, event.CommissionID)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				a.log.Warn("Commission rule not found for booking event",
					"booking_id", event.BookingID,
					"commission_id", event.CommissionID,
				)
				return nil
			}
			return kafka.NewTransientError("load commission rule", err)
		}
		amount := decimal.Zero
		if commissionservice.AppliesTo(rule, event.ResortID, event.RoomTypeID, event.BookedAt) {
			amount = commissionservice.CalculateCommission(rule, event.Subtotal, event.Nights)
		}
		a.accrue(event.BookingID, rule.AgentID, amount)

	case model.EventBookingCancelled:
		if event.PreviousStatus == model.BookingStatusConfirmed {
			a.reverse(event.BookingID)
		}
	}
	return nil
}

func (a *Accrual) accrue(bookingID, agentID string, amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, seen := a.bookings[bookingID]; seen {
		return
	}
	a.bookings[bookingID] = &entry{agentID: agentID, amount: amount}

	agent, ok := a.agents[agentID]
	if !ok {
		agent = &model.AgentCommission{AgentID: agentID, Commission: decimal.Zero}
		a.agents[agentID] = agent
	}
	agent.Bookings++
	agent.Commission = agent.Commission.Add(amount)
}

func (a *Accrual) reverse(bookingID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.bookings[bookingID]
	if !ok || e.reversed {
		return
	}
	e.reversed = true

	agent := a.agents[e.agentID]
	agent.Bookings--
	agent.Commission = agent.Commission.Sub(e.amount)
}

func (a *Accrual) touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processed++
	a.updatedAt = a.now()
}

func (a *Accrual) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := Snapshot{
		Agents:          make([]model.AgentCommission, 0, len(a.agents)),
		TotalCommission: decimal.Zero,
		EventsProcessed: a.processed,
	}
	for _, agent := range a.agents {
		snap.Agents = append(snap.Agents, *agent)
		snap.TotalCommission = snap.TotalCommission.Add(agent.Commission)
		snap.OpenBookings += agent.Bookings
	}
	slices.SortFunc(snap.Agents, func(x, y model.AgentCommission) int {
		if c := y.Commission.Cmp(x.Commission); c != 0 {
			return c
		}
		return strings.Compare(x.AgentID, y.AgentID)
	})
	if !a.updatedAt.IsZero() {
		at := a.updatedAt
		snap.UpdatedAt = &at
	}
	return snap
}
