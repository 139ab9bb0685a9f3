package pipeline

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCount renders n with thousands separators: 1234567 -> "1,234,567".
// Fractional values keep two decimals.
func FormatCount(n float64) string {
	p := message.NewPrinter(language.English)
	if n == math.Trunc(n) && math.Abs(n) < 1e18 {
		return p.Sprintf("%d", int64(n))
	}
	return p.Sprintf("%.2f", n)
}
