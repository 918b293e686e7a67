// Package dates holds calendar-day helpers. Every value handled by the
// inventory and rate stores is a UTC midnight; a stay [checkIn, checkOut)
// consists of the nights checkIn .. checkOut-1.
package dates

import "time"

const Layout = "2006-01-02"

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func Key(t time.Time) string {
	return Day(t).Format(Layout)
}

func Next(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}

func Prev(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, -1)
}

// Nights counts the nights between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return int(Day(checkOut).Sub(Day(checkIn)).Hours() / 24)
}

// Each returns every day in [start, end).
func Each(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if !start.Before(end) {
		return nil
	}
	out := make([]time.Time, 0, Nights(start, end))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Contains reports whether day falls within the inclusive range [from, to].
func Contains(from, to, day time.Time) bool {
	day = Day(day)
	return !day.Before(Day(from)) && !day.After(Day(to))
}

// Overlaps reports whether the inclusive ranges [aFrom, aTo] and [bFrom, bTo] share a day.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !Day(aFrom).After(Day(bTo)) && !Day(bFrom).After(Day(aTo))
}

func Keys(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, Key(d))
	}
	return out
}
