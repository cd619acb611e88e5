package salary

import "strings"

// Unit is the period a salary amount is paid for
type Unit int

const (
	UnitYear Unit = iota
	UnitQuarter
	UnitMonth
	UnitBiWeek
	UnitWeek
	UnitDay
	UnitHour
)

// Day and hour assume a 5 day, 8 hour working week.
var yearlyMultipliers = [...]int{
	UnitYear:    1,
	UnitQuarter: 4,
	UnitMonth:   12,
	UnitBiWeek:  24,
	UnitWeek:    48,
	UnitDay:     240,
	UnitHour:    1920,
}

var suffixes = [...]string{
	UnitYear:    "a year",
	UnitQuarter: "a quarter",
	UnitMonth:   "a month",
	UnitBiWeek:  "a fortnight",
	UnitWeek:    "a week",
	UnitDay:     "a day",
	UnitHour:    "an hour",
}

// Multiplier converts an amount in this unit to a yearly amount
func (u Unit) Multiplier() int {
	if u < UnitYear || u > UnitHour {
		return 1
	}
	return yearlyMultipliers[u]
}

// Suffix is the human readable period, e.g. "a month"
func (u Unit) Suffix() string {
	if u < UnitYear || u > UnitHour {
		return ""
	}
	return suffixes[u]
}

// ParseUnit maps provider unit names (YEAR, MONTHLY, BI_WEEK, ...) to a Unit
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YEAR", "YEARLY", "ANNUAL", "ANNUALLY":
		return UnitYear, true
	case "QUARTER", "QUARTERLY":
		return UnitQuarter, true
	case "MONTH", "MONTHLY":
		return UnitMonth, true
	case "BI_WEEK", "BIWEEK", "BIWEEKLY", "BI_WEEKLY", "FORTNIGHT":
		return UnitBiWeek, true
	case "WEEK", "WEEKLY":
		return UnitWeek, true
	case "DAY", "DAILY":
		return UnitDay, true
	case "HOUR", "HOURLY":
		return UnitHour, true
	default:
		return UnitYear, false
	}
}
