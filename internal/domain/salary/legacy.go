package salary

import (
	"regexp"
	"strconv"
	"strings"
)

// Legacy is the key/value salary encoding: an average plus a loosely
// structured range like "30000-40000" or "£30,000 - £40,000". An upper bound
// of -1 means unbounded.
type Legacy struct {
	Average   float64
	RangeText string
	Formatted string
	Unit      Unit
	Currency  string
}

var rangePattern = regexp.MustCompile(`(?P<lower>\d+(?:\.\d+)?)\D*?-\s*\D*?(?P<upper>-?\d+(?:\.\d+)?)`)

// ParseRange extracts the lower and upper bounds from a range string
func ParseRange(text string) (lower, upper float64, ok bool) {
	m := rangePattern.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if m == nil {
		return 0, 0, false
	}

	lower, err := strconv.ParseFloat(m[rangePattern.SubexpIndex("lower")], 64)
	if err != nil {
		return 0, 0, false
	}
	upper, err = strconv.ParseFloat(m[rangePattern.SubexpIndex("upper")], 64)
	if err != nil {
		return 0, 0, false
	}
	return lower, upper, true
}

// NormalizeLegacy converts the legacy encoding. The provider's average is
// skewed towards zero for "up to" ranges, so the upper bound is used instead.
func NormalizeLegacy(l Legacy) Result {
	f := newFormatter(l.Currency)

	var (
		text  string
		avg   float64
		built bool
	)

	lower, upper, ok := ParseRange(l.RangeText)
	switch {
	case ok && lower == 0 && upper >= 1:
		text, avg, built = "Up to "+f.amount(upper), upper, true
	case ok && upper == -1 && lower >= 1:
		text, avg, built = "From "+f.amount(lower), lower, true
	case ok && lower >= 1 && upper >= 1:
		avg = (lower + upper) / 2
		text = l.Formatted
		if text == "" {
			text, built = f.amount(lower)+" - "+f.amount(upper), true
		}
	case l.Average >= 1:
		avg = l.Average
		text = l.Formatted
		if text == "" {
			text, built = f.amount(l.Average), true
		}
	default:
		return Result{}
	}

	if built {
		text = withSuffix(text, l.Unit)
	}

	return Result{
		Formatted: text,
		AvgYearly: yearly(avg, l.Unit),
	}
}
