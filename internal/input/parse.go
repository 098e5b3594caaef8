// Package input coerces raw user input into budget, label and odds values.
// Malformed input never produces an error here: it becomes 0, which the
// allocator treats as "no result" or "ineligible".
package input

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/flat-stake/internal/models"
)

var (
	integerPrefix = regexp.MustCompile(`^[+-]?\d+`)
	decimalPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

	maxBudget = decimal.NewFromInt(models.MaxBudget)
	minBudget = decimal.NewFromInt(-models.MaxBudget)
)

// ParseBudget reads the leading integer of s. Trailing garbage is ignored and
// anything without a leading integer yields 0. Values are clamped to
// ±models.MaxBudget.
func ParseBudget(s string) int64 {
	d, ok := parsePrefix(integerPrefix, s)
	if !ok {
		return 0
	}
	return clampBudget(d)
}

// ParseLabel reads a display number the same way as ParseBudget
func ParseLabel(s string) int {
	v := ParseBudget(s)
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0
	}
	return int(v)
}

// ParseOdds reads the leading decimal number of s. Invalid input yields 0,
// which marks the outcome ineligible.
func ParseOdds(s string) float64 {
	d, ok := parsePrefix(decimalPrefix, s)
	if !ok {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParseOddsDecimal parses odds strictly, for callers that want an error
func ParseOddsDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid odds format: %s", s)
	}
	return d, nil
}

// ParseOutcomeList parses a comma separated odds list. Entries are either bare
// odds ("2.5,5.0", labelled 1..n) or label=odds pairs ("3=2.5,5=5.0").
// Outcome ids are assigned 1..n in input order.
func ParseOutcomeList(s string) []models.Outcome {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	outcomes := make([]models.Outcome, 0, len(parts))
	for i, part := range parts {
		label := i + 1
		oddsText := part
		if key, value, found := strings.Cut(part, "="); found {
			label = ParseLabel(key)
			oddsText = value
		}
		outcomes = append(outcomes, models.Outcome{
			ID:    i + 1,
			Label: label,
			Odds:  ParseOdds(oddsText),
		})
	}
	return outcomes
}

// FormatOdds renders odds without float noise, e.g. 2.5 -> "2.5", 5 -> "5.0"
func FormatOdds(odds float64) string {
	if math.IsNaN(odds) || math.IsInf(odds, 0) {
		return "0.0"
	}
	d := decimal.NewFromFloat(odds)
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(1)
	}
	return d.String()
}

func parsePrefix(re *regexp.Regexp, s string) (decimal.Decimal, bool) {
	match := re.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(normalizeNumber(match))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// normalizeNumber turns "+.5" or "2." style prefixes into "0.5" and "2"
func normalizeNumber(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
	}
	s = strings.TrimLeft(s, "+-")
	mantissa, exponent := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exponent = s[:i], s[i:]
	}
	mantissa = strings.TrimSuffix(mantissa, ".")
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	return sign + mantissa + exponent
}

func clampBudget(d decimal.Decimal) int64 {
	switch {
	case d.GreaterThan(maxBudget):
		return models.MaxBudget
	case d.LessThan(minBudget):
		return -models.MaxBudget
	default:
		return d.IntPart()
	}
}
