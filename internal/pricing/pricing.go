// Package pricing turns raw price cells into decimal amounts and formats them
// for display in Colombian peso notation.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "$"

// Normalize converts a raw cell value into a non-negative amount. It never
// fails: anything it cannot read becomes zero.
func Normalize(raw any) decimal.Decimal {
	var amount decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		amount = *v
	case float64:
		amount = fromFloat(v)
	case float32:
		amount = fromFloat(float64(v))
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int8:
		amount = decimal.NewFromInt(int64(v))
	case int16:
		amount = decimal.NewFromInt(int64(v))
	case int32:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case uint:
		amount = decimal.NewFromUint64(uint64(v))
	case uint8:
		amount = decimal.NewFromUint64(uint64(v))
	case uint16:
		amount = decimal.NewFromUint64(uint64(v))
	case uint32:
		amount = decimal.NewFromUint64(uint64(v))
	case uint64:
		amount = decimal.NewFromUint64(v)
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return parseText(v.String())
		}
		amount = parsed
	case string:
		return parseText(v)
	case []byte:
		return parseText(string(v))
	case fmt.Stringer:
		return parseText(v.String())
	default:
		return parseText(fmt.Sprintf("%v", v))
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

func fromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// parseText keeps digits and periods, drops commas (thousands separators) and
// everything else, then parses what is left.
func parseText(text string) decimal.Decimal {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// Format renders an amount as "$ 1.234.567": rounded half to even to whole
// units, with periods grouping thousands.
func Format(amount decimal.Decimal) string {
	rounded := amount.RoundBank(0)
	if rounded.IsZero() {
		return currencySymbol + " 0"
	}
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return currencySymbol + " " + sign + groupThousands(rounded.Abs().String())
}

// FormatFloat is Format for float inputs. NaN and infinities render as zero.
func FormatFloat(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return currencySymbol + " 0"
	}
	return Format(decimal.NewFromFloat(amount))
}

// Percent renders a percentage without trailing zeros, e.g. "12.5%".
func Percent(p decimal.Decimal) string {
	return p.String() + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
