package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		r         Range
		unit      Unit
		formatted string
		wantText  string
		wantAvg   int
	}{
		{
			name:     "up to when lower bound is zero",
			r:        Between(0, 1000),
			unit:     UnitMonth,
			wantText: "Up to £1,000 a month",
			wantAvg:  12000,
		},
		{
			name:     "at least weekly",
			r:        AtLeast(500),
			unit:     UnitWeek,
			wantText: "From £500 a week",
			wantAvg:  24000,
		},
		{
			name:     "midpoint of yearly range",
			r:        Between(30000, 40000),
			unit:     UnitYear,
			wantText: "£30,000 - £40,000 a year",
			wantAvg:  35000,
		},
		{
			name:     "at most daily",
			r:        AtMost(200),
			unit:     UnitDay,
			wantText: "Up to £200 a day",
			wantAvg:  48000,
		},
		{
			name:     "exactly hourly with pence",
			r:        Exactly(12.5),
			unit:     UnitHour,
			wantText: "£12.50 an hour",
			wantAvg:  24000,
		},
		{
			name:      "provider text wins",
			r:         Between(50000, 60000),
			unit:      UnitYear,
			formatted: "£50k to £60k",
			wantText:  "£50k to £60k",
			wantAvg:   55000,
		},
		{
			name:     "quarterly",
			r:        Exactly(10000),
			unit:     UnitQuarter,
			wantText: "£10,000 a quarter",
			wantAvg:  40000,
		},
		{
			name:     "bi-weekly from lower bound only",
			r:        Between(1500, -1),
			unit:     UnitBiWeek,
			wantText: "From £1,500 a fortnight",
			wantAvg:  36000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.r, tt.unit, "GBP", tt.formatted)
			assert.Equal(t, tt.wantText, got.Formatted)
			require.NotNil(t, got.AvgYearly)
			assert.Equal(t, tt.wantAvg, *got.AvgYearly)
		})
	}
}

func TestNormalizeWithoutBounds(t *testing.T) {
	for _, r := range []Range{Between(0, 0), Between(0, -1), AtLeast(0), AtMost(0), Exactly(0), {}} {
		got := Normalize(r, UnitYear, "GBP", "")
		assert.True(t, got.Empty(), "range %+v", r)
		assert.Nil(t, got.AvgYearly)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "$80,000 a year", Normalize(Exactly(80000), UnitYear, "usd", "").Formatted)
	assert.Equal(t, "€45 an hour", Normalize(Exactly(45), UnitHour, "EUR", "").Formatted)
	assert.Equal(t, "CHF 100,000 a year", Normalize(Exactly(100000), UnitYear, "CHF", "").Formatted)
}

func TestNormalizeLegacy(t *testing.T) {
	tests := []struct {
		name     string
		in       Legacy
		wantText string
		wantAvg  int
	}{
		{
			name:     "zero lower bound uses upper bound",
			in:       Legacy{Average: 500, RangeText: "0-1000", Unit: UnitMonth},
			wantText: "Up to £1,000 a month",
			wantAvg:  12000,
		},
		{
			name:     "unbounded upper uses lower bound",
			in:       Legacy{Average: 12500, RangeText: "25000--1", Unit: UnitYear},
			wantText: "From £25,000 a year",
			wantAvg:  25000,
		},
		{
			name:     "documented range text kept without suffix",
			in:       Legacy{Average: 35000, RangeText: "30,000 - 40,000", Formatted: "£30,000 - £40,000 a year", Unit: UnitYear},
			wantText: "£30,000 - £40,000 a year",
			wantAvg:  35000,
		},
		{
			name:     "range without provider text",
			in:       Legacy{RangeText: "10-12", Unit: UnitHour},
			wantText: "£10 - £12 an hour",
			wantAvg:  21120,
		},
		{
			name:     "currency decorated up to range",
			in:       Legacy{Average: 10000, RangeText: "£0 - £50,000", Unit: UnitYear},
			wantText: "Up to £50,000 a year",
			wantAvg:  50000,
		},
		{
			name:     "currency decorated range",
			in:       Legacy{Average: 12000, RangeText: "£30,000 - £40,000", Unit: UnitYear},
			wantText: "£30,000 - £40,000 a year",
			wantAvg:  35000,
		},
		{
			name:     "currency decorated open range",
			in:       Legacy{RangeText: "£25,000 - -1", Unit: UnitYear},
			wantText: "From £25,000 a year",
			wantAvg:  25000,
		},
		{
			name:     "average only",
			in:       Legacy{Average: 400, Unit: UnitWeek},
			wantText: "£400 a week",
			wantAvg:  19200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLegacy(tt.in)
			assert.Equal(t, tt.wantText, got.Formatted)
			require.NotNil(t, got.AvgYearly)
			assert.Equal(t, tt.wantAvg, *got.AvgYearly)
		})
	}
}

func TestNormalizeLegacyWithoutBounds(t *testing.T) {
	got := NormalizeLegacy(Legacy{RangeText: "0--1", Unit: UnitYear})
	assert.True(t, got.Empty())

	got = NormalizeLegacy(Legacy{})
	assert.True(t, got.Empty())
}

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{
		"YEAR":    UnitYear,
		"monthly": UnitMonth,
		"BI_WEEK": UnitBiWeek,
		"Hourly":  UnitHour,
		"DAY":     UnitDay,
	}
	for in, want := range tests {
		got, ok := ParseUnit(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseUnit("fortnightly-ish")
	assert.False(t, ok)
}
