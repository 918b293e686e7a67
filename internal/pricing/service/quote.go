package service

import (
	"context"
	"strings"
	"time"

	promoservice "resort/internal/promotions/service"
	rateservice "resort/internal/rates/service"
	resortservice "resort/internal/resorts/service"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Request is a priced stay. Dates are UTC midnights, check-out exclusive.
type Request struct {
	RatePlanID    string
	CheckIn       time.Time
	CheckOut      time.Time
	Adults        int
	Children      int
	PromotionCode string
	TransferID    string
	CurrencyCode  string
}

// QuoteService gathers pricing inputs from the catalog and composes a quote.
// It never writes.
type QuoteService interface {
	Quote(ctx context.Context, req Request) (*Quote, *model.RatePlan, error)
}

type quoteService struct {
	ratePlans  rateservice.RatePlanService
	rates      rateservice.RateResolver
	resorts    resortservice.ResortService
	transfers  resortservice.TransferService
	settings   resortservice.SettingService
	promotions promoservice.PromotionService
	cfg        *config.Config
	now        func() time.Time
}

func NewQuoteService(
	ratePlans rateservice.RatePlanService,
	rates rateservice.RateResolver,
	resorts resortservice.ResortService,
	transfers resortservice.TransferService,
	settings resortservice.SettingService,
	promotions promoservice.PromotionService,
	cfg *config.Config,
) QuoteService {
	return &quoteService{
		ratePlans:  ratePlans,
		rates:      rates,
		resorts:    resorts,
		transfers:  transfers,
		settings:   settings,
		promotions: promotions,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *quoteService) Quote(ctx context.Context, req Request) (*Quote, *model.RatePlan, error) {
	if !req.CheckOut.After(req.CheckIn) {
		return nil, nil, apperrors.InvalidInput("check_out must be after check_in")
	}
	if req.Adults < 1 {
		return nil, nil, apperrors.InvalidInput("at least one adult is required")
	}

	plan, err := s.ratePlans.GetBookable(ctx, req.RatePlanID)
	if err != nil {
		return nil, nil, err
	}

	var (
		resort       *model.Resort
		nights       []rateservice.NightlyRate
		feeRate      decimal.Decimal
		transfer     *model.Transfer
		currencyRate = decimal.NewFromInt(1)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resort, err = s.resorts.GetByID(gctx, plan.ResortID)
		return err
	})
	g.Go(func() error {
		var err error
		nights, err = s.rates.NightlyRates(gctx, plan.ID, req.CheckIn, req.CheckOut)
		return err
	})
	g.Go(func() error {
		return s.rates.CheckStayRules(gctx, plan.ID, req.CheckIn, req.CheckOut)
	})
	g.Go(func() error {
		var err error
		feeRate, err = s.settings.ServiceFeeRate(gctx)
		return err
	})
	if req.TransferID != "" {
		g.Go(func() error {
			var err error
			transfer, err = s.transfers.GetByID(gctx, req.TransferID)
			if err != nil {
				return err
			}
			if !transfer.Active || transfer.ResortID != plan.ResortID {
				return apperrors.Validation("Transfer is not available for this resort", map[string]any{
					"transfer_id": req.TransferID,
					"resort_id":   plan.ResortID,
				})
			}
			return nil
		})
	}
	currencyCode := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currencyCode != "" {
		g.Go(func() error {
			var err error
			currencyRate, err = s.settings.CurrencyRate(gctx, currencyCode)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if currencyCode == "" || currencyCode == resort.Currency {
		currencyCode = resort.Currency
		currencyRate = decimal.NewFromInt(1)
	}

	var promotion *model.Promotion
	if code := strings.TrimSpace(req.PromotionCode); code != "" {
		promotion, err = s.promotions.Apply(ctx, code, promoservice.Eligibility{
			ResortID:   plan.ResortID,
			RatePlanID: plan.ID,
			RoomTypeID: plan.RoomTypeID,
			Amount:     rateservice.Total(nights),
			Nights:     len(nights),
		}, s.now().UTC())
		if err != nil {
			return nil, nil, err
		}
	}

	quote, err := Compose(Input{
		Nights:         nights,
		Promotion:      promotion,
		TaxRules:       resort.TaxRules,
		ServiceFeeRate: feeRate,
		Transfer:       transfer,
		Adults:         req.Adults,
		Deposit:        plan.Deposit,
		CurrencyCode:   currencyCode,
		CurrencyRate:   currencyRate,
	})
	if err != nil {
		return nil, nil, apperrors.InvalidInput(err.Error())
	}

	quote.RatePlanID = plan.ID
	quote.ResortID = plan.ResortID
	quote.RoomTypeID = plan.RoomTypeID
	quote.CheckIn = dates.Key(req.CheckIn)
	quote.CheckOut = dates.Key(req.CheckOut)
	quote.Children = req.Children

	if len(quote.UnpricedNights) > 0 {
		s.cfg.Log.Warn("Quote contains nights without a seasonal rate",
			"rate_plan_id", plan.ID,
			"nights", quote.UnpricedNights,
		)
	}
	s.cfg.Log.Debug("Quote composed",
		"rate_plan_id", plan.ID,
		"nights", quote.Nights,
		"total", quote.Total.StringFixed(2),
	)
	return quote, plan, nil
}
