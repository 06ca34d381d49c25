package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/romanselivan/goldantilop/internal/domain"
)

// ParseAmount reads the amount a user typed. Thousand separators and
// stray currency signs are tolerated; anything that does not reduce to
// a positive number is ErrInvalidAmount.
func ParseAmount(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '-'
	})
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", text, domain.ErrInvalidAmount)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%q: %w", text, domain.ErrInvalidAmount)
	}
	return f, nil
}

// formatInt renders 1234567 as "1,234,567".
func formatInt(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// formatAmount keeps the fraction the user typed, with grouping on the
// whole part.
func formatAmount(f float64) string {
	whole := int64(f)
	if f == float64(whole) {
		return formatInt(whole)
	}
	frac := strconv.FormatFloat(f, 'f', 2, 64)
	return formatInt(whole) + frac[strings.IndexByte(frac, '.'):]
}
