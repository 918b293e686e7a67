package testutil

import (
	"net/http"
	"testing"
	"time"

	"resort/pkg/client"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
)

// Catalog is the seeded resort, plan and season a lifecycle test books against.
type Catalog struct {
	Resort   *model.Resort
	RatePlan *model.RatePlan
	CheckIn  time.Time
}

// SeedCatalog creates a resort with a single plan priced at nightlyPrice for
// the next sixty days and rooms available on each of them.
func SeedCatalog(t *testing.T, c *client.CatalogClient, nightlyPrice string, rooms int) *Catalog {
	t.Helper()

	resp, err := c.CreateResort(&model.Resort{
		Name:     "Lagoon Retreat",
		Currency: "USD",
		TaxRules: map[string]decimal.Decimal{"green_tax": decimal.RequireFromString("6")},
		Active:   true,
	})
	resort := &model.Resort{}
	mustCreate(t, resp, err, resort)

	resp, err = c.CreateRatePlan(&model.RatePlan{
		ResortID:   resort.ID,
		RoomTypeID: "water-villa",
		Name:       "Water Villa Flexible",
		Refundable: true,
		Active:     true,
	})
	plan := &model.RatePlan{}
	mustCreate(t, resp, err, plan)

	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 7)
	end := start.AddDate(0, 0, 60)

	resp, err = c.AddSeasonalRate(plan.ID, model.SeasonalRateRequest{
		Name:         "High season",
		StartDate:    start.Format(time.DateOnly),
		EndDate:      end.Format(time.DateOnly),
		NightlyPrice: decimal.RequireFromString(nightlyPrice),
	})
	mustCreate(t, resp, err, &model.SeasonalRate{})

	resp, err = c.SetInventory(plan.ID, model.InventoryRangeRequest{
		StartDate:      start.Format(time.DateOnly),
		EndDate:        end.Format(time.DateOnly),
		AvailableRooms: rooms,
	})
	if err != nil {
		t.Fatalf("set inventory: %v", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		t.Fatalf("set inventory: %s", resp.ToString())
	}

	return &Catalog{Resort: resort, RatePlan: plan, CheckIn: start}
}

// BookingRequest stays the given number of nights from the catalog's first
// bookable day plus offset days.
func (c *Catalog) BookingRequest(offset, nights int, email string) model.BookingRequest {
	checkIn := c.CheckIn.AddDate(0, 0, offset)
	return model.BookingRequest{
		RatePlanID: c.RatePlan.ID,
		CheckIn:    checkIn.Format(time.DateOnly),
		CheckOut:   checkIn.AddDate(0, 0, nights).Format(time.DateOnly),
		Adults:     2,
		Guest: model.Guest{
			Name:    "Aisha Rasheed",
			Email:   email,
			Country: "MV",
		},
	}
}

func mustCreate(t *testing.T, resp *client.Response, err error, target any) {
	t.Helper()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %s", resp.ToString())
	}
	if err := resp.DecodeData(target); err != nil {
		t.Fatal(err)
	}
}
