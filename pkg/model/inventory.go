package model

import (
	"time"

	"resort/pkg/dates"
)

// Inventory is the number of rooms of a rate plan available on every day of
// [StartDate, EndDate], both ends inclusive. Version increases on every write
// and guards conditional updates.
type Inventory struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	RatePlanID     string    `json:"rate_plan_id" bson:"rate_plan_id"`
	StartDate      time.Time `json:"start_date" bson:"start_date"`
	EndDate        time.Time `json:"end_date" bson:"end_date"`
	AvailableRooms int       `json:"available_rooms" bson:"available_rooms"`
	Blocked        bool      `json:"blocked" bson:"blocked"`
	Version        int64     `json:"version" bson:"version"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (i *Inventory) Covers(day time.Time) bool {
	return dates.Contains(i.StartDate, i.EndDate, day)
}

func (i *Inventory) IsAvailable(count int) bool {
	return !i.Blocked && i.AvailableRooms >= count
}

// DayAvailability is one night of an availability calendar.
type DayAvailability struct {
	Date           string `json:"date"`
	AvailableRooms int    `json:"available_rooms"`
	Blocked        bool   `json:"blocked"`
	Covered        bool   `json:"covered"`
	InventoryID    string `json:"inventory_id,omitempty"`
}

// InventoryRangeRequest sets availability for every day of [StartDate, EndDate].
type InventoryRangeRequest struct {
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	AvailableRooms int    `json:"available_rooms" validate:"min=0,max=10000"`
	Blocked        bool   `json:"blocked"`
}

// LedgerLock is an advisory lock document serialising writers of one rate
// plan's inventory ledger. Expired locks are reaped by a TTL index.
type LedgerLock struct {
	ID        string    `json:"id" bson:"_id"`
	Owner     string    `json:"owner" bson:"owner"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
