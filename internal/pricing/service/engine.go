// Package service composes booking prices: room nights, discount, taxes,
// service fee and transfer, in that order.
package service

import (
	"errors"
	"fmt"
	"slices"

	promoservice "resort/internal/promotions/service"
	rateservice "resort/internal/rates/service"
	"resort/pkg/dates"
	"resort/pkg/model"
	"resort/pkg/money"

	"github.com/shopspring/decimal"
)

var ErrNoNights = errors.New("a quote needs at least one night")

type Input struct {
	Nights         []rateservice.NightlyRate
	Promotion      *model.Promotion
	TaxRules       map[string]decimal.Decimal
	ServiceFeeRate decimal.Decimal
	Transfer       *model.Transfer
	Adults         int
	Deposit        model.DepositPolicy
	CurrencyCode   string
	CurrencyRate   decimal.Decimal
}

type Quote struct {
	RatePlanID string `json:"rate_plan_id"`
	ResortID   string `json:"resort_id"`
	RoomTypeID string `json:"room_type_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`

	RoomSubtotal   decimal.Decimal `json:"room_subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxTotal       decimal.Decimal `json:"tax_total"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	TransferTotal  decimal.Decimal `json:"transfer_total"`
	Total          decimal.Decimal `json:"total"`
	DepositAmount  decimal.Decimal `json:"deposit_amount"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencyRate   decimal.Decimal `json:"currency_rate"`
	ConvertedTotal decimal.Decimal `json:"converted_total"`

	PromotionID   string              `json:"promotion_id,omitempty"`
	PromotionCode string              `json:"promotion_code,omitempty"`
	TransferID    string              `json:"transfer_id,omitempty"`
	Items         []model.BookingItem `json:"items"`
	// UnpricedNights lists nights priced at zero because no rate covered them.
	UnpricedNights []string `json:"unpriced_nights,omitempty"`
}

// Compose prices a stay. Every persisted amount is rounded half up to cents
// as soon as it is computed, so taxes and the fee are derived from the
// rounded subtotal.
func Compose(in Input) (*Quote, error) {
	if len(in.Nights) == 0 {
		return nil, ErrNoNights
	}

	q := &Quote{
		Nights:       len(in.Nights),
		Adults:       in.Adults,
		CurrencyCode: in.CurrencyCode,
		CurrencyRate: money.RoundRate(in.CurrencyRate),
	}
	if !q.CurrencyRate.IsPositive() {
		q.CurrencyRate = decimal.NewFromInt(1)
	}

	q.Items = roomItems(in.Nights)
	q.RoomSubtotal = money.Round(rateservice.Total(in.Nights))
	for _, n := range in.Nights {
		if n.RateID == "" {
			q.UnpricedNights = append(q.UnpricedNights, dates.Key(n.Date))
		}
	}

	q.DiscountAmount = promoservice.CalculateDiscount(in.Promotion, q.RoomSubtotal)
	if in.Promotion != nil {
		q.PromotionID = in.Promotion.ID
		q.PromotionCode = in.Promotion.Code
		if q.DiscountAmount.IsPositive() {
			q.Items = append(q.Items, model.BookingItem{
				Kind:        model.ItemKindDiscount,
				Description: fmt.Sprintf("Promotion %s", in.Promotion.Code),
				UnitPrice:   q.DiscountAmount.Neg(),
				Quantity:    1,
				Total:       q.DiscountAmount.Neg(),
			})
		}
	}
	q.Subtotal = money.Round(q.RoomSubtotal.Sub(q.DiscountAmount))

	q.TaxTotal = decimal.Zero
	for _, name := range sortedKeys(in.TaxRules) {
		rate := in.TaxRules[name]
		amount := money.Percent(q.Subtotal, rate)
		q.TaxTotal = q.TaxTotal.Add(amount)
		q.Items = append(q.Items, model.BookingItem{
			Kind:        model.ItemKindTax,
			Description: fmt.Sprintf("%s (%s%%)", name, rate.String()),
			UnitPrice:   amount,
			Quantity:    1,
			Total:       amount,
		})
	}

	q.ServiceFee = money.Percent(q.Subtotal, in.ServiceFeeRate)
	q.Items = append(q.Items, model.BookingItem{
		Kind:        model.ItemKindServiceFee,
		Description: fmt.Sprintf("Tourist service fee (%s%%)", in.ServiceFeeRate.String()),
		UnitPrice:   q.ServiceFee,
		Quantity:    1,
		Total:       q.ServiceFee,
	})

	q.TransferTotal = decimal.Zero
	if in.Transfer != nil {
		q.TransferID = in.Transfer.ID
		q.TransferTotal = money.Round(in.Transfer.UnitPrice.Mul(decimal.NewFromInt(int64(in.Adults))))
		q.Items = append(q.Items, model.BookingItem{
			Kind:        model.ItemKindTransfer,
			Description: in.Transfer.Name,
			UnitPrice:   in.Transfer.UnitPrice,
			Quantity:    in.Adults,
			Total:       q.TransferTotal,
		})
	}

	q.Total = money.Sum(q.Subtotal, q.TaxTotal, q.ServiceFee, q.TransferTotal)
	q.DepositAmount = decimal.Zero
	if in.Deposit.Required {
		q.DepositAmount = money.Percent(q.Total, in.Deposit.Percentage)
	}
	q.ConvertedTotal = money.Round(q.Total.Mul(q.CurrencyRate))

	return q, nil
}

// roomItems emits one line per run of consecutive nights sharing a rate
// and price.
func roomItems(nights []rateservice.NightlyRate) []model.BookingItem {
	var items []model.BookingItem
	var last rateservice.NightlyRate

	for i, n := range nights {
		if i > 0 && n.RateID == last.RateID && n.Price.Equal(last.Price) {
			item := &items[len(items)-1]
			item.Quantity++
			item.Total = money.Round(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			continue
		}

		description := "Unpriced night"
		if n.RateID != "" {
			description = n.RateName
		}
		items = append(items, model.BookingItem{
			Kind:        model.ItemKindRoom,
			Description: fmt.Sprintf("%s from %s", description, dates.Key(n.Date)),
			UnitPrice:   money.Round(n.Price),
			Quantity:    1,
			Total:       money.Round(n.Price),
		})
		last = n
	}
	return items
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
