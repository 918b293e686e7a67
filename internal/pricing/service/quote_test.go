package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	promoservice "resort/internal/promotions/service"
	rateservice "resort/internal/rates/service"
	resortservice "resort/internal/resorts/service"
	"resort/pkg/config"
	"resort/pkg/dates"
	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
)

type mockRatePlans struct {
	rateservice.RatePlanService
	plan *model.RatePlan
	err  error
}

func (m *mockRatePlans) GetBookable(context.Context, string) (*model.RatePlan, error) {
	return m.plan, m.err
}

type mockRates struct {
	rateservice.RateResolver
	price    string
	stayErr  error
	resolved atomic.Int32
}

func (m *mockRates) NightlyRates(_ context.Context, _ string, checkIn, checkOut time.Time) ([]rateservice.NightlyRate, error) {
	m.resolved.Add(1)
	var out []rateservice.NightlyRate
	for _, day := range dates.Each(checkIn, checkOut) {
		out = append(out, rateservice.NightlyRate{Date: day, Price: d(m.price), RateID: "r1", RateName: "High season"})
	}
	return out, nil
}

func (m *mockRates) CheckStayRules(context.Context, string, time.Time, time.Time) error {
	return m.stayErr
}

type mockResorts struct {
	resortservice.ResortService
	resort *model.Resort
}

func (m *mockResorts) GetByID(context.Context, string) (*model.Resort, error) {
	return m.resort, nil
}

type mockTransfers struct {
	resortservice.TransferService
	transfer *model.Transfer
}

func (m *mockTransfers) GetByID(context.Context, string) (*model.Transfer, error) {
	if m.transfer == nil {
		return nil, apperrors.NotFoundWithID("Transfer", "x")
	}
	return m.transfer, nil
}

type mockSettings struct {
	resortservice.SettingService
	fee   string
	rates map[string]string
}

func (m *mockSettings) ServiceFeeRate(context.Context) (decimal.Decimal, error) {
	return d(m.fee), nil
}

func (m *mockSettings) CurrencyRate(_ context.Context, code string) (decimal.Decimal, error) {
	if r, ok := m.rates[code]; ok {
		return d(r), nil
	}
	return decimal.NewFromInt(1), nil
}

type mockPromotions struct {
	promoservice.PromotionService
	promotion *model.Promotion
	stay      promoservice.Eligibility
}

func (m *mockPromotions) Apply(_ context.Context, _ string, stay promoservice.Eligibility, now time.Time) (*model.Promotion, error) {
	m.stay = stay
	if err := promoservice.Check(m.promotion, stay, now); err != nil {
		return nil, apperrors.Validation("Promotion is not applicable", map[string]any{"reason": err.Error()})
	}
	return m.promotion, nil
}

type fixture struct {
	plans      *mockRatePlans
	rates      *mockRates
	transfers  *mockTransfers
	settings   *mockSettings
	promotions *mockPromotions
	svc        QuoteService
}

func newFixture() *fixture {
	f := &fixture{
		plans: &mockRatePlans{plan: &model.RatePlan{
			ID: "plan-1", ResortID: "resort-1", RoomTypeID: "villa", Active: true,
		}},
		rates:     &mockRates{price: "300"},
		transfers: &mockTransfers{},
		settings:  &mockSettings{fee: "10", rates: map[string]string{"EUR": "0.9"}},
		promotions: &mockPromotions{promotion: &model.Promotion{
			ID: "promo-1", Code: "SAVE15", Type: model.PromotionTypePercentage, Value: d("15"), Active: true,
		}},
	}
	resorts := &mockResorts{resort: &model.Resort{
		ID: "resort-1", Currency: "USD", TaxRules: map[string]decimal.Decimal{"gst": d("12")},
	}}
	f.svc = NewQuoteService(f.plans, f.rates, resorts, f.transfers, f.settings, f.promotions, &config.Config{Log: logger.Discard()})
	return f
}

func stay() Request {
	return Request{
		RatePlanID:    "plan-1",
		CheckIn:       dates.MustParse("2025-12-10"),
		CheckOut:      dates.MustParse("2025-12-13"),
		Adults:        2,
		PromotionCode: "SAVE15",
	}
}

func TestQuote_ComposesCatalogInputs(t *testing.T) {
	f := newFixture()

	quote, plan, err := f.svc.Quote(context.Background(), stay())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if plan.ID != "plan-1" {
		t.Errorf("plan = %s", plan.ID)
	}
	if !quote.Total.Equal(d("933.30")) {
		t.Errorf("total = %s, want 933.30", quote.Total)
	}
	if quote.CurrencyCode != "USD" || !quote.CurrencyRate.Equal(d("1")) {
		t.Errorf("currency = %s @ %s", quote.CurrencyCode, quote.CurrencyRate)
	}
	if quote.CheckIn != "2025-12-10" || quote.CheckOut != "2025-12-13" || quote.RoomTypeID != "villa" {
		t.Errorf("stay fields = %+v", quote)
	}
	if !f.promotions.stay.Amount.Equal(d("900")) || f.promotions.stay.Nights != 3 {
		t.Errorf("promotion evaluated against %+v", f.promotions.stay)
	}
}

func TestQuote_ForeignCurrency(t *testing.T) {
	f := newFixture()
	req := stay()
	req.CurrencyCode = "eur"

	quote, _, err := f.svc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.CurrencyCode != "EUR" || !quote.ConvertedTotal.Equal(d("839.97")) {
		t.Errorf("currency = %s converted = %s, want EUR 839.97", quote.CurrencyCode, quote.ConvertedTotal)
	}
}

func TestQuote_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *fixture, req *Request)
		wantCode string
	}{
		{
			name:     "reversed stay",
			mutate:   func(_ *fixture, req *Request) { req.CheckOut = req.CheckIn },
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "no adults",
			mutate:   func(_ *fixture, req *Request) { req.Adults = 0 },
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name: "plan not bookable",
			mutate: func(f *fixture, _ *Request) {
				f.plans.err = apperrors.Validation("Rate plan is not available for booking", nil)
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "stay rule",
			mutate: func(f *fixture, _ *Request) {
				f.rates.stayErr = apperrors.Validation("Stay is shorter than the minimum stay", nil)
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "transfer from another resort",
			mutate: func(f *fixture, req *Request) {
				req.TransferID = "t1"
				f.transfers.transfer = &model.Transfer{ID: "t1", ResortID: "resort-2", Active: true, UnitPrice: d("100")}
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "unknown transfer",
			mutate: func(_ *fixture, req *Request) {
				req.TransferID = "missing"
			},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name: "promotion inapplicable",
			mutate: func(f *fixture, _ *Request) {
				f.promotions.promotion.Active = false
			},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := stay()
			tt.mutate(f, &req)

			_, _, err := f.svc.Quote(context.Background(), req)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("Quote() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestQuote_WithTransfer(t *testing.T) {
	f := newFixture()
	f.transfers.transfer = &model.Transfer{ID: "t1", ResortID: "resort-1", Name: "Speedboat", Active: true, UnitPrice: d("75")}
	req := stay()
	req.TransferID = "t1"

	quote, _, err := f.svc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !quote.TransferTotal.Equal(d("150")) || !quote.Total.Equal(d("1083.30")) {
		t.Errorf("transfer = %s total = %s", quote.TransferTotal, quote.Total)
	}
}
