package service

import (
	"slices"
	"time"

	"resort/internal/inventory/repository"
	"resort/pkg/dates"
	"resort/pkg/model"
)

// slot is the state of one night on one record.
type slot struct {
	available int
	blocked   bool
}

func slotOf(r *model.Inventory) slot {
	return slot{available: r.AvailableRooms, blocked: r.Blocked}
}

// piece is a run of consecutive days sharing one slot. sources lists the
// records whose days were merged into it, in day order.
type piece struct {
	start   time.Time
	end     time.Time
	slot    slot
	sources []*model.Inventory
}

// ledger is an in-memory view of one rate plan's records with pending day
// edits. Planning never touches storage.
type ledger struct {
	ratePlanID string
	records    []*model.Inventory
	edits      map[*model.Inventory]map[string]*slot
	added      []piece
}

func newLedger(ratePlanID string, records []*model.Inventory) *ledger {
	sorted := slices.Clone(records)
	sortRecords(sorted)
	return &ledger{
		ratePlanID: ratePlanID,
		records:    sorted,
		edits:      make(map[*model.Inventory]map[string]*slot),
	}
}

// sortRecords orders records the way nights are served: by start date,
// then creation time, then id.
func sortRecords(records []*model.Inventory) {
	slices.SortStableFunc(records, func(a, b *model.Inventory) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// slotAt returns the effective slot of r on day, and false when the day was
// dropped from r.
func (l *ledger) slotAt(r *model.Inventory, day time.Time) (slot, bool) {
	if days, ok := l.edits[r]; ok {
		if s, edited := days[dates.Key(day)]; edited {
			if s == nil {
				return slot{}, false
			}
			return *s, true
		}
	}
	return slotOf(r), true
}

func (l *ledger) edit(r *model.Inventory, day time.Time, s *slot) {
	days, ok := l.edits[r]
	if !ok {
		days = make(map[string]*slot)
		l.edits[r] = days
	}
	days[dates.Key(day)] = s
}

func (l *ledger) covering(day time.Time) []*model.Inventory {
	var out []*model.Inventory
	for _, r := range l.records {
		if !r.Covers(day) {
			continue
		}
		if _, ok := l.slotAt(r, day); ok {
			out = append(out, r)
		}
	}
	return out
}

// available reports whether every night in [start, end) is served by an
// unblocked record with at least count rooms.
func (l *ledger) available(start, end time.Time, count int) bool {
	nights := dates.Each(start, end)
	if len(nights) == 0 {
		return false
	}
	for _, day := range nights {
		if l.blockTarget(day, count) == nil {
			return false
		}
	}
	return true
}

// serving picks the record that answers for day: the unblocked covering
// record with the most rooms, else the first covering record. Ties keep
// record order.
func (l *ledger) serving(day time.Time) *model.Inventory {
	covering := l.covering(day)
	if len(covering) == 0 {
		return nil
	}
	best := covering[0]
	bestSlot, _ := l.slotAt(best, day)
	for _, r := range covering[1:] {
		s, _ := l.slotAt(r, day)
		if s.blocked {
			continue
		}
		if bestSlot.blocked || s.available > bestSlot.available {
			best, bestSlot = r, s
		}
	}
	return best
}

func (l *ledger) blockTarget(day time.Time, count int) *model.Inventory {
	r := l.serving(day)
	if r == nil {
		return nil
	}
	if s, _ := l.slotAt(r, day); s.blocked || s.available < count {
		return nil
	}
	return r
}

// collapse drops day from every covering record except the serving one, so a
// written night is owned by exactly one record and a later write on the same
// night finds the same record.
func (l *ledger) collapse(day time.Time, keep *model.Inventory) {
	for _, r := range l.covering(day) {
		if r != keep {
			l.edit(r, day, nil)
		}
	}
}

// block decrements count rooms on every night of [start, end). When any night
// cannot be served the ledger is left untouched and those nights returned.
func (l *ledger) block(start, end time.Time, count int) []time.Time {
	type hit struct {
		record *model.Inventory
		day    time.Time
	}

	var (
		hits     []hit
		unserved []time.Time
	)
	for _, day := range dates.Each(start, end) {
		r := l.blockTarget(day, count)
		if r == nil {
			unserved = append(unserved, day)
			continue
		}
		hits = append(hits, hit{record: r, day: day})
	}
	if len(unserved) > 0 {
		return unserved
	}

	for _, h := range hits {
		l.collapse(h.day, h.record)
		s, _ := l.slotAt(h.record, h.day)
		s.available -= count
		l.edit(h.record, h.day, &s)
	}
	return nil
}

// release credits count rooms to the serving record of every night of
// [start, end) and returns the nights no record covers.
func (l *ledger) release(start, end time.Time, count int) []time.Time {
	var skipped []time.Time
	for _, day := range dates.Each(start, end) {
		r := l.serving(day)
		if r == nil {
			skipped = append(skipped, day)
			continue
		}
		l.collapse(day, r)
		s, _ := l.slotAt(r, day)
		s.available += count
		l.edit(r, day, &s)
	}
	return skipped
}

// set replaces every covering record on the inclusive range [from, to] with
// a single run of the given availability.
func (l *ledger) set(from, to time.Time, available int, blocked bool) {
	for _, day := range dates.Each(from, dates.Next(to)) {
		for _, r := range l.covering(day) {
			l.edit(r, day, nil)
		}
	}
	l.added = append(l.added, piece{
		start: dates.Day(from),
		end:   dates.Day(to),
		slot:  slot{available: available, blocked: blocked},
	})
}

// pieces cuts every edited or neighbouring record into runs of equal slots,
// appends new coverage and coalesces adjacent runs.
func (l *ledger) pieces() []piece {
	var out []piece
	for _, r := range l.records {
		var current *piece
		for d := dates.Day(r.StartDate); !d.After(dates.Day(r.EndDate)); d = dates.Next(d) {
			s, ok := l.slotAt(r, d)
			if !ok {
				if current != nil {
					out = append(out, *current)
					current = nil
				}
				continue
			}
			if current != nil && current.slot == s {
				current.end = d
				continue
			}
			if current != nil {
				out = append(out, *current)
			}
			current = &piece{start: d, end: d, slot: s, sources: []*model.Inventory{r}}
		}
		if current != nil {
			out = append(out, *current)
		}
	}
	out = append(out, l.added...)

	slices.SortStableFunc(out, func(a, b piece) int {
		return a.start.Compare(b.start)
	})

	var merged []piece
	for _, p := range out {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.slot == p.slot && dates.Next(last.end).Equal(p.start) {
				last.end = p.end
				last.sources = append(last.sources, p.sources...)
				continue
			}
		}
		merged = append(merged, p)
	}
	return merged
}

// plan turns the edited ledger into conditional writes. Each run reuses the
// first of its source records not already claimed; runs without a free source
// become inserts and unclaimed records are deleted.
func (l *ledger) plan(now time.Time) repository.Mutation {
	var m repository.Mutation
	if len(l.edits) == 0 && len(l.added) == 0 {
		return m
	}

	claimed := make(map[*model.Inventory]bool, len(l.records))
	for _, p := range l.pieces() {
		var owner *model.Inventory
		for _, src := range p.sources {
			if !claimed[src] {
				owner = src
				break
			}
		}

		if owner == nil {
			createdAt := now
			if len(p.sources) > 0 {
				createdAt = p.sources[0].CreatedAt
			}
			m.Inserts = append(m.Inserts, &model.Inventory{
				RatePlanID:     l.ratePlanID,
				StartDate:      p.start,
				EndDate:        p.end,
				AvailableRooms: p.slot.available,
				Blocked:        p.slot.blocked,
				Version:        1,
				CreatedAt:      createdAt,
				UpdatedAt:      now,
			})
			continue
		}

		claimed[owner] = true
		if dates.Day(owner.StartDate).Equal(p.start) && dates.Day(owner.EndDate).Equal(p.end) && slotOf(owner) == p.slot {
			continue
		}
		updated := *owner
		updated.StartDate = p.start
		updated.EndDate = p.end
		updated.AvailableRooms = p.slot.available
		updated.Blocked = p.slot.blocked
		updated.UpdatedAt = now
		m.Updates = append(m.Updates, &updated)
	}

	for _, r := range l.records {
		if !claimed[r] {
			m.Deletes = append(m.Deletes, r)
		}
	}
	return m
}

// calendar renders one entry per night of [start, end).
func (l *ledger) calendar(start, end time.Time) []model.DayAvailability {
	nights := dates.Each(start, end)
	out := make([]model.DayAvailability, 0, len(nights))
	for _, day := range nights {
		entry := model.DayAvailability{Date: dates.Key(day)}
		if r := l.serving(day); r != nil {
			s, _ := l.slotAt(r, day)
			entry.Covered = true
			entry.Blocked = s.blocked
			entry.InventoryID = r.ID
			if !s.blocked {
				entry.AvailableRooms = s.available
			}
		}
		out = append(out, entry)
	}
	return out
}
