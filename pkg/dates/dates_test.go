package dates

import (
	"testing"
	"time"
)

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		want     int
	}{
		{"three nights", "2025-12-10", "2025-12-13", 3},
		{"same day", "2025-12-10", "2025-12-10", 0},
		{"month boundary", "2025-01-30", "2025-02-02", 3},
		{"leap day", "2024-02-28", "2024-03-01", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nights(MustParse(tt.checkIn), MustParse(tt.checkOut)); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEach_ExcludesCheckout(t *testing.T) {
	days := Each(MustParse("2025-12-10"), MustParse("2025-12-13"))
	want := []string{"2025-12-10", "2025-12-11", "2025-12-12"}
	got := Keys(days)
	if len(got) != len(want) {
		t.Fatalf("Each() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestEach_EmptyRange(t *testing.T) {
	if days := Each(MustParse("2025-12-13"), MustParse("2025-12-10")); days != nil {
		t.Errorf("expected nil for inverted range, got %v", days)
	}
}

func TestDay_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	in := time.Date(2025, 12, 10, 1, 30, 0, 0, loc)
	got := Day(in)
	if Key(got) != "2025-12-09" {
		t.Errorf("Day() = %s, want 2025-12-09", Key(got))
	}
	if got.Location() != time.UTC {
		t.Errorf("Day() must return UTC")
	}
}

func TestContainsAndOverlaps(t *testing.T) {
	from, to := MustParse("2025-12-01"), MustParse("2025-12-31")
	if !Contains(from, to, MustParse("2025-12-31")) {
		t.Errorf("range end is inclusive")
	}
	if Contains(from, to, MustParse("2026-01-01")) {
		t.Errorf("day after range must not be contained")
	}
	if !Overlaps(from, to, MustParse("2025-12-31"), MustParse("2026-01-05")) {
		t.Errorf("ranges sharing one day overlap")
	}
	if Overlaps(from, to, MustParse("2026-01-01"), MustParse("2026-01-05")) {
		t.Errorf("adjacent ranges do not overlap")
	}
}
