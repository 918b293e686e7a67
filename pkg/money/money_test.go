package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"91.8", "91.8"},
		{"0.005", "0.01"},
		{"0.004", "0"},
		{"10.125", "10.13"},
		{"10.135", "10.14"},
		{"2.675", "2.68"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(MustParse(tt.in))
			if !got.Equal(MustParse(tt.want)) {
				t.Errorf("Round(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundRate_FourPlaces(t *testing.T) {
	got := RoundRate(MustParse("3.67255"))
	if !got.Equal(MustParse("3.6726")) {
		t.Errorf("RoundRate = %s, want 3.6726", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		rate   string
		want   string
	}{
		{"gst on discounted subtotal", "765.00", "12", "91.80"},
		{"service fee", "765.00", "10", "76.50"},
		{"promotion", "900.00", "15", "135.00"},
		{"rounds half up", "0.25", "10", "0.03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(MustParse(tt.amount), MustParse(tt.rate))
			if !got.Equal(MustParse(tt.want)) {
				t.Errorf("Percent(%s, %s) = %s, want %s", tt.amount, tt.rate, got, tt.want)
			}
		})
	}
}

func TestMinAndNonNegative(t *testing.T) {
	if !Min(MustParse("5"), MustParse("3")).Equal(MustParse("3")) {
		t.Errorf("Min picked the larger value")
	}
	if !NonNegative(MustParse("-1")).Equal(decimal.Zero) {
		t.Errorf("NonNegative should clamp to zero")
	}
	if !Sum(MustParse("765"), MustParse("91.80"), MustParse("76.50")).Equal(MustParse("933.30")) {
		t.Errorf("Sum mismatch")
	}
}
