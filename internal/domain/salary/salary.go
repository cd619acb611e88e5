// Package salary converts provider salary encodings into a formatted string
// and an average yearly amount.
package salary

import (
	"math"
)

// Kind tags the shape of a Range
type Kind int

const (
	KindAtLeast Kind = iota + 1
	KindAtMost
	KindExactly
	KindBetween
)

// Range is a closed sum type over the salary shapes providers report.
// Only the fields relevant to Kind are meaningful.
type Range struct {
	Kind  Kind
	Min   float64
	Max   float64
	Value float64
}

func AtLeast(min float64) Range      { return Range{Kind: KindAtLeast, Min: min} }
func AtMost(max float64) Range       { return Range{Kind: KindAtMost, Max: max} }
func Exactly(value float64) Range    { return Range{Kind: KindExactly, Value: value} }
func Between(min, max float64) Range { return Range{Kind: KindBetween, Min: min, Max: max} }

// Average returns the representative amount of the range in its own unit.
// A bound below 1 is treated as absent.
func (r Range) Average() (float64, bool) {
	switch r.Kind {
	case KindAtLeast:
		return r.Min, r.Min >= 1
	case KindAtMost:
		return r.Max, r.Max >= 1
	case KindExactly:
		return r.Value, r.Value >= 1
	case KindBetween:
		switch {
		case r.Min >= 1 && r.Max >= 1:
			return (r.Min + r.Max) / 2, true
		case r.Min >= 1:
			return r.Min, true
		case r.Max >= 1:
			return r.Max, true
		}
	}
	return 0, false
}

func (r Range) describe(f formatter) string {
	switch r.Kind {
	case KindAtLeast:
		return "From " + f.amount(r.Min)
	case KindAtMost:
		return "Up to " + f.amount(r.Max)
	case KindExactly:
		return f.amount(r.Value)
	case KindBetween:
		switch {
		case r.Min >= 1 && r.Max >= 1:
			return f.amount(r.Min) + " - " + f.amount(r.Max)
		case r.Min >= 1:
			return "From " + f.amount(r.Min)
		case r.Max >= 1:
			return "Up to " + f.amount(r.Max)
		}
	}
	return ""
}

// Result is the canonical salary pair
type Result struct {
	Formatted string
	AvgYearly *int
}

// Empty reports whether no salary information was derived
func (r Result) Empty() bool {
	return r.Formatted == "" && r.AvgYearly == nil
}

// Normalize converts a polymorphic range. formatted is the provider's own
// text, used verbatim when present; otherwise the text is built and the unit
// suffix appended.
func Normalize(r Range, unit Unit, currency, formatted string) Result {
	avg, ok := r.Average()
	if !ok {
		return Result{}
	}

	text := formatted
	if text == "" {
		text = withSuffix(r.describe(newFormatter(currency)), unit)
	}

	return Result{
		Formatted: text,
		AvgYearly: yearly(avg, unit),
	}
}

func yearly(avg float64, unit Unit) *int {
	v := int(math.Round(avg * float64(unit.Multiplier())))
	return &v
}

func withSuffix(text string, unit Unit) string {
	if text == "" {
		return ""
	}
	if s := unit.Suffix(); s != "" {
		return text + " " + s
	}
	return text
}
