package service

import (
	"context"
	"errors"
	"slices"
	"time"

	rateserrors "resort/internal/rates/errors"
	"resort/internal/rates/repository"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/money"

	"github.com/shopspring/decimal"
)

// NightlyRate is the price of one night of a stay. RateID is empty for a
// night priced at zero in lenient mode.
type NightlyRate struct {
	Date     time.Time       `json:"date"`
	Price    decimal.Decimal `json:"price"`
	RateID   string          `json:"rate_id,omitempty"`
	RateName string          `json:"rate_name,omitempty"`
}

// RateResolver prices nights from a rate plan's seasonal rates. When ranges
// overlap, the most recently created one wins.
type RateResolver interface {
	RateForDate(ctx context.Context, ratePlanID string, date time.Time) (*model.SeasonalRate, error)
	NightlyRates(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time) ([]NightlyRate, error)
	TotalForPeriod(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time) (decimal.Decimal, error)
	CheckStayRules(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time) error
}

type rateResolver struct {
	repo repository.SeasonalRateRepository
	cfg  *config.Config
}

func NewRateResolver(repo repository.SeasonalRateRepository, cfg *config.Config) RateResolver {
	return &rateResolver{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *rateResolver) RateForDate(ctx context.Context, ratePlanID string, date time.Time) (*model.SeasonalRate, error) {
	day := dates.Day(date)
	rates, err := s.repo.FindOverlapping(ctx, ratePlanID, day, day)
	if err != nil {
		s.cfg.Log.Error("Failed to load seasonal rates", "rate_plan_id", ratePlanID, "error", err)
		return nil, apperrors.Internal("Failed to load seasonal rates", err)
	}

	rate := rateFor(sortNewestFirst(rates), day)
	if rate == nil {
		return nil, apperrors.NotFound("Seasonal rate").
			WithDetails(map[string]any{"rate_plan_id": ratePlanID, "nights": []string{dates.Key(day)}}).
			WithCause(rateserrors.ErrNoRateForNight)
	}
	return rate, nil
}

func (s *rateResolver) NightlyRates(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time) ([]NightlyRate, error) {
	checkIn, checkOut = dates.Day(checkIn), dates.Day(checkOut)
	if !checkIn.Before(checkOut) {
		return nil, apperrors.InvalidInput("Check-out must be after check-in")
	}

	rates, err := s.repo.FindOverlapping(ctx, ratePlanID, checkIn, dates.Prev(checkOut))
	if err != nil {
		s.cfg.Log.Error("Failed to load seasonal rates", "rate_plan_id", ratePlanID, "error", err)
		return nil, apperrors.Internal("Failed to load seasonal rates", err)
	}

	nights, uncovered := priceNights(sortNewestFirst(rates), checkIn, checkOut)
	if len(uncovered) > 0 {
		if !s.cfg.RatesLenient {
			return nil, apperrors.NotFound("Seasonal rate").
				WithDetails(map[string]any{"rate_plan_id": ratePlanID, "nights": dates.Keys(uncovered)}).
				WithCause(rateserrors.ErrNoRateForNight)
		}
		s.cfg.Log.Warn("Nights without a seasonal rate priced at zero",
			"rate_plan_id", ratePlanID,
			"nights", dates.Keys(uncovered),
		)
	}
	return nights, nil
}

func (s *rateResolver) TotalForPeriod(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time) (decimal.Decimal, error) {
	nights, err := s.NightlyRates(ctx, ratePlanID, checkIn, checkOut)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(nights), nil
}

// CheckStayRules applies min_stay and max_stay of the rate covering the
// check-in night. A zero bound is unbounded.
func (s *rateResolver) CheckStayRules(ctx context.Context, ratePlanID string, checkIn, checkOut time.Time) error {
	rate, err := s.RateForDate(ctx, ratePlanID, checkIn)
	if err != nil {
		if errors.Is(err, rateserrors.ErrNoRateForNight) {
			return nil
		}
		return err
	}
	return stayRuleViolation(rate, dates.Nights(checkIn, checkOut))
}

func Total(nights []NightlyRate) decimal.Decimal {
	total := decimal.Zero
	for _, n := range nights {
		total = total.Add(n.Price)
	}
	return money.Round(total)
}

func stayRuleViolation(rate *model.SeasonalRate, nights int) error {
	if rate.MinStay > 0 && nights < rate.MinStay {
		return apperrors.Validation("Stay is shorter than the minimum stay", map[string]any{
			"min_stay": rate.MinStay,
			"nights":   nights,
			"rate":     rate.Name,
		})
	}
	if rate.MaxStay > 0 && nights > rate.MaxStay {
		return apperrors.Validation("Stay is longer than the maximum stay", map[string]any{
			"max_stay": rate.MaxStay,
			"nights":   nights,
			"rate":     rate.Name,
		})
	}
	return nil
}

func priceNights(rates []*model.SeasonalRate, checkIn, checkOut time.Time) ([]NightlyRate, []time.Time) {
	var (
		nights    []NightlyRate
		uncovered []time.Time
	)
	for _, day := range dates.Each(checkIn, checkOut) {
		rate := rateFor(rates, day)
		if rate == nil {
			uncovered = append(uncovered, day)
			nights = append(nights, NightlyRate{Date: day, Price: decimal.Zero})
			continue
		}
		nights = append(nights, NightlyRate{
			Date:     day,
			Price:    rate.NightlyPrice,
			RateID:   rate.ID,
			RateName: rate.Name,
		})
	}
	return nights, uncovered
}

// rateFor returns the first rate containing day; rates must be newest first.
func rateFor(rates []*model.SeasonalRate, day time.Time) *model.SeasonalRate {
	for _, r := range rates {
		if dates.Contains(r.StartDate, r.EndDate, day) {
			return r
		}
	}
	return nil
}

func sortNewestFirst(rates []*model.SeasonalRate) []*model.SeasonalRate {
	sorted := slices.Clone(rates)
	slices.SortStableFunc(sorted, func(a, b *model.SeasonalRate) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return sorted
}
