// Package format renders prices for people.
package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale matches the market the prices are published for.
const DefaultLocale = "es-CO"

// Formatter renders amounts with locale grouping and the cash precision
// of the currency: whole pesos, cents for dollars.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter creates a formatter for a BCP 47 locale such as "es-CO".
func NewFormatter(locale string) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Locale returns the formatter language tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Decimals returns the number of fraction digits shown for code.
func Decimals(code string) (int, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("unknown currency %q: %w", code, err)
	}
	scale, _ := currency.Cash.Rounding(unit)
	return scale, nil
}

// Amount renders amount in the given ISO currency, e.g. "USD 1,234.50".
func (f *Formatter) Amount(amount decimal.Decimal, code string) (string, error) {
	decimals, err := Decimals(code)
	if err != nil {
		return "", err
	}

	value, _ := amount.Round(int32(decimals)).Float64()
	return f.printer.Sprintf("%s %v", code, number.Decimal(value, number.Scale(decimals))), nil
}

// Number renders a plain integer quantity with locale grouping.
func (f *Formatter) Number(n int64) string {
	return f.printer.Sprintf("%v", number.Decimal(n))
}
