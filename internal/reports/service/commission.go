package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	bookingrepo "resort/internal/bookings/repository"
	commissionservice "resort/internal/commissions/service"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
)

// MaxReportDays bounds the check-in window of a single report.
const MaxReportDays = 366

type ReportService interface {
	// CommissionReport derives commissions for confirmed and completed
	// bookings checking in within [from, to) from the current rules.
	CommissionReport(ctx context.Context, from, to time.Time) (*model.CommissionReport, error)
}

type reportService struct {
	bookings    bookingrepo.BookingRepository
	commissions commissionservice.CommissionService
	cfg         *config.Config
	now         func() time.Time
}

func NewReportService(bookings bookingrepo.BookingRepository, commissions commissionservice.CommissionService, cfg *config.Config) ReportService {
	return &reportService{
		bookings:    bookings,
		commissions: commissions,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) CommissionReport(ctx context.Context, from, to time.Time) (*model.CommissionReport, error) {
	from, to = dates.Day(from), dates.Day(to)
	if !to.After(from) {
		return nil, apperrors.InvalidInput("'to' must be after 'from'")
	}
	if days := dates.Nights(from, to); days > MaxReportDays {
		return nil, apperrors.InvalidInput(fmt.Sprintf("report range cannot exceed %d days, got %d", MaxReportDays, days))
	}

	bookings, err := s.bookings.FindForCommissionReport(ctx, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for commission report", "from", dates.Key(from), "to", dates.Key(to), "error", err)
		return nil, apperrors.Internal("Failed to build commission report", err)
	}

	rules, err := s.commissions.GetByIDs(ctx, commissionIDs(bookings))
	if err != nil {
		return nil, err
	}

	report := &model.CommissionReport{
		From:        dates.Key(from),
		To:          dates.Key(to),
		GeneratedAt: s.now(),
		Summary: model.CommissionReportSummary{
			TotalBookingValue: decimal.Zero,
			TotalCommission:   decimal.Zero,
		},
	}

	lines := map[string]*model.CommissionReportLine{}
	agents := map[string]*model.AgentCommission{}
	for _, b := range bookings {
		rule, ok := rules[b.CommissionID]
		if !ok {
			report.Summary.UnknownRules++
			continue
		}
		// Rules edited after booking pay nothing for bookings they no longer cover.
		amount := decimal.Zero
		if commissionservice.AppliesTo(rule, b.ResortID, b.RoomTypeID, b.CreatedAt) {
			amount = commissionservice.CalculateCommission(rule, b.Subtotal, b.Nights)
		}

		line, ok := lines[rule.ID]
		if !ok {
			line = &model.CommissionReportLine{
				CommissionID: rule.ID,
				AgentID:      rule.AgentID,
				Name:         rule.Name,
				BookingValue: decimal.Zero,
				Commission:   decimal.Zero,
			}
			lines[rule.ID] = line
		}
		line.Bookings++
		line.Nights += b.Nights
		line.BookingValue = line.BookingValue.Add(b.Subtotal)
		line.Commission = line.Commission.Add(amount)

		agent, ok := agents[rule.AgentID]
		if !ok {
			agent = &model.AgentCommission{AgentID: rule.AgentID, Commission: decimal.Zero}
			agents[rule.AgentID] = agent
		}
		agent.Bookings++
		agent.Commission = agent.Commission.Add(amount)

		report.Summary.TotalBookings++
		report.Summary.TotalBookingValue = report.Summary.TotalBookingValue.Add(b.Subtotal)
		report.Summary.TotalCommission = report.Summary.TotalCommission.Add(amount)
	}

	report.Lines = sortedLines(lines)
	report.Agents = sortedAgents(agents)

	s.cfg.Log.Info("Commission report generated",
		"from", report.From,
		"to", report.To,
		"bookings", report.Summary.TotalBookings,
		"unknown_rules", report.Summary.UnknownRules,
		"total_commission", report.Summary.TotalCommission.StringFixed(2),
	)
	return report, nil
}

func commissionIDs(bookings []*model.Booking) []string {
	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.CommissionID]; ok || b.CommissionID == "" {
			continue
		}
		seen[b.CommissionID] = struct{}{}
		ids = append(ids, b.CommissionID)
	}
	slices.Sort(ids)
	return ids
}

// Highest commission first, ties by ID so reports are stable.
func sortedLines(m map[string]*model.CommissionReportLine) []model.CommissionReportLine {
	out := make([]model.CommissionReportLine, 0, len(m))
	for _, l := range m {
		out = append(out, *l)
	}
	slices.SortFunc(out, func(a, b model.CommissionReportLine) int {
		if c := b.Commission.Cmp(a.Commission); c != 0 {
			return c
		}
		return strings.Compare(a.CommissionID, b.CommissionID)
	})
	return out
}

func sortedAgents(m map[string]*model.AgentCommission) []model.AgentCommission {
	out := make([]model.AgentCommission, 0, len(m))
	for _, a := range m {
		out = append(out, *a)
	}
	slices.SortFunc(out, func(a, b model.AgentCommission) int {
		if c := b.Commission.Cmp(a.Commission); c != 0 {
			return c
		}
		return strings.Compare(a.AgentID, b.AgentID)
	})
	return out
}
