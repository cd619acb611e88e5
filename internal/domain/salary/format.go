package salary

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"NZD": "$",
	"EUR": "€",
	"INR": "₹",
	"JPY": "¥",
}

type formatter struct {
	printer *message.Printer
	symbol  string
}

func newFormatter(currency string) formatter {
	code := strings.ToUpper(strings.TrimSpace(currency))
	symbol, ok := symbols[code]
	switch {
	case code == "":
		symbol = "£"
	case !ok:
		symbol = code + " "
	}

	return formatter{
		printer: message.NewPrinter(language.English),
		symbol:  symbol,
	}
}

func (f formatter) amount(v float64) string {
	if v == math.Trunc(v) {
		return f.symbol + f.printer.Sprintf("%d", int64(v))
	}
	return f.symbol + f.printer.Sprintf("%.2f", v)
}
