package model

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CountryRestrictionNone    = "none"
	CountryRestrictionInclude = "include"
	CountryRestrictionExclude = "exclude"
)

type Resort struct {
	ID       string                     `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string                     `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Currency string                     `json:"currency" bson:"currency" validate:"required,iso4217"`
	TaxRules map[string]decimal.Decimal `json:"tax_rules" bson:"tax_rules" validate:"omitempty,dive,keys,min=1,max=40,endkeys,gte=0,lte=100"`
	Active   bool                       `json:"active" bson:"active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type DepositPolicy struct {
	Required   bool            `json:"required" bson:"required"`
	Percentage decimal.Decimal `json:"percentage" bson:"percentage" validate:"gte=0,lte=100"`
}

type CountryRestriction struct {
	Mode      string   `json:"mode" bson:"mode" validate:"omitempty,oneof=none include exclude"`
	Countries []string `json:"countries,omitempty" bson:"countries,omitempty" validate:"omitempty,dive,iso3166_1_alpha2"`
}

// Allows reports whether guests from country may book under this policy.
// An unknown country only passes when no restriction is configured.
func (c CountryRestriction) Allows(country string) bool {
	switch c.Mode {
	case CountryRestrictionInclude:
		return country != "" && slices.ContainsFunc(c.Countries, func(code string) bool {
			return strings.EqualFold(code, country)
		})
	case CountryRestrictionExclude:
		if country == "" {
			return false
		}
		return !slices.ContainsFunc(c.Countries, func(code string) bool {
			return strings.EqualFold(code, country)
		})
	default:
		return true
	}
}

type RatePlan struct {
	ID                 string             `json:"id,omitempty" bson:"_id,omitempty"`
	ResortID           string             `json:"resort_id" bson:"resort_id" validate:"required,mongodb"`
	RoomTypeID         string             `json:"room_type_id" bson:"room_type_id" validate:"required,max=64"`
	Name               string             `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Refundable         bool               `json:"refundable" bson:"refundable"`
	BreakfastIncluded  bool               `json:"breakfast_included" bson:"breakfast_included"`
	Deposit            DepositPolicy      `json:"deposit" bson:"deposit"`
	CountryRestriction CountryRestriction `json:"country_restriction" bson:"country_restriction"`
	Active             bool               `json:"active" bson:"active"`
	DeletedAt          *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (p *RatePlan) Bookable() bool {
	return p.Active && p.DeletedAt == nil
}

// SeasonalRate prices every night in [StartDate, EndDate], both ends inclusive.
type SeasonalRate struct {
	ID           string          `json:"id,omitempty" bson:"_id,omitempty"`
	RatePlanID   string          `json:"rate_plan_id" bson:"rate_plan_id"`
	Name         string          `json:"name" bson:"name"`
	StartDate    time.Time       `json:"start_date" bson:"start_date"`
	EndDate      time.Time       `json:"end_date" bson:"end_date"`
	NightlyPrice decimal.Decimal `json:"nightly_price" bson:"nightly_price"`
	MinStay      int             `json:"min_stay" bson:"min_stay"`
	MaxStay      int             `json:"max_stay" bson:"max_stay"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Transfer struct {
	ID        string          `json:"id,omitempty" bson:"_id,omitempty"`
	ResortID  string          `json:"resort_id" bson:"resort_id" validate:"required,mongodb"`
	Name      string          `json:"name" bson:"name" validate:"required,min=2,max=120"`
	UnitPrice decimal.Decimal `json:"unit_price" bson:"unit_price" validate:"gte=0"`
	Active    bool            `json:"active" bson:"active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Setting is a key/value entry of the runtime configuration source.
type Setting struct {
	Key       string    `json:"key" bson:"_id" validate:"required,max=64"`
	Value     string    `json:"value" bson:"value" validate:"required,max=256"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

const (
	SettingServiceFee         = "tourist_service_fee"
	SettingCurrencyRatePrefix = "currency_rate_"
)

type SeasonalRateRequest struct {
	Name         string          `json:"name" validate:"required,min=2,max=120"`
	StartDate    string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	NightlyPrice decimal.Decimal `json:"nightly_price" validate:"gt=0"`
	MinStay      int             `json:"min_stay" validate:"min=0,max=365"`
	MaxStay      int             `json:"max_stay" validate:"min=0,max=365"`
}
