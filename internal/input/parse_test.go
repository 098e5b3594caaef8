package input

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/flat-stake/internal/models"
)

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10000", 10000},
		{"  2500 ", 2500},
		{"10000.9", 10000},
		{"12abc", 12},
		{"-300", -300},
		{"+700", 700},
		{"1e4", 1},
		{"", 0},
		{"abc", 0},
		{".5", 0},
		{"99999999999999999999999", models.MaxBudget},
		{"900719925474099299", models.MaxBudget},
		{"9007199254740992", models.MaxBudget},
		{"9007199254740991", models.MaxBudget - 1},
		{"-99999999999999999999999", -models.MaxBudget},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBudget(tt.in))
		})
	}
}

func TestParseOdds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.5", 2.5},
		{"5", 5},
		{" 3.1 ", 3.1},
		{".5", 0.5},
		{"-.5", -0.5},
		{"2.", 2},
		{"2.5x", 2.5},
		{"1e1", 10},
		{"1.5e-1", 0.15},
		{"", 0},
		{"odds", 0},
		{"Infinity", 0},
		{"1e400", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOdds(tt.in))
		})
	}
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, 7, ParseLabel("7"))
	assert.Equal(t, 0, ParseLabel("#"))
	assert.Equal(t, 0, ParseLabel("99999999999"))
	assert.Equal(t, 0, ParseLabel("99999999999999999999999"))
}

func TestParseOddsDecimal(t *testing.T) {
	d, err := ParseOddsDecimal(" 2.50 ")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())

	_, err = ParseOddsDecimal("2/1")
	assert.Error(t, err)
}

func TestParseOutcomeList(t *testing.T) {
	t.Run("bare odds", func(t *testing.T) {
		got := ParseOutcomeList("2.5, 5.0")
		assert.Equal(t, []models.Outcome{
			{ID: 1, Label: 1, Odds: 2.5},
			{ID: 2, Label: 2, Odds: 5},
		}, got)
	})

	t.Run("labelled odds", func(t *testing.T) {
		got := ParseOutcomeList("3=2.5,5=x,8=12")
		assert.Equal(t, []models.Outcome{
			{ID: 1, Label: 3, Odds: 2.5},
			{ID: 2, Label: 5, Odds: 0},
			{ID: 3, Label: 8, Odds: 12},
		}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ParseOutcomeList("  "))
	})
}

func TestFormatOdds(t *testing.T) {
	assert.Equal(t, "2.5", FormatOdds(2.5))
	assert.Equal(t, "5.0", FormatOdds(5))
	assert.Equal(t, "0.1", FormatOdds(0.1))
	assert.Equal(t, "12.35", FormatOdds(12.35))
	assert.Equal(t, "0.0", FormatOdds(math.NaN()))
}
