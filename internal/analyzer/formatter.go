package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoDataAnswer is returned when a query legitimately produces no value.
const NoDataAnswer = "no data found"

// FormatAnswer normalizes a raw scalar into the final answer string.
// Integers at or above 1000 are grouped with spaces ("150 000").
// Fractional values are rounded to at most two decimal places with
// trailing zeros dropped. Anything non-numeric renders via its default
// string form.
func FormatAnswer(value any) string {
	switch v := value.(type) {
	case nil:
		return NoDataAnswer
	case int64:
		return formatInt(v)
	case int:
		return formatInt(int64(v))
	case float64:
		return formatFloat(v)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n >= 1000 {
		s = groupThousands(s)
	}
	return s
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if f >= 1000 {
		s = groupThousands(s)
	}
	return s
}

// groupThousands inserts a space every three digits of the integer part.
// The input must be a plain decimal number without sign.
func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(intPart[i])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
