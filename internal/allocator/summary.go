package allocator

import "math"

// Summary holds the figures shown under the stake table
type Summary struct {
	TotalInvested     int64 `json:"total_invested"`
	MinPayout         int64 `json:"min_payout"`
	MaxPayout         int64 `json:"max_payout"`
	ExpectedProfit    int64 `json:"expected_profit"`
	ReturnRatePercent int64 `json:"return_rate_percent"`
}

// IsPayoutRange reports whether payouts differ between outcomes, in which case
// the expected payout is shown as a lower bound.
func (s Summary) IsPayoutRange() bool {
	return s.MinPayout != s.MaxPayout
}

// summarize derives the summary from the eligible stakes.
// It returns false when nothing was invested.
func summarize(stakes []Stake) (Summary, bool) {
	var (
		total     int64
		minPayout int64 = math.MaxInt64
		maxPayout int64 = math.MinInt64
	)
	for _, s := range stakes {
		if !s.Eligible {
			continue
		}
		total += s.Stake
		if s.Payout < minPayout {
			minPayout = s.Payout
		}
		if s.Payout > maxPayout {
			maxPayout = s.Payout
		}
	}
	if total <= 0 {
		return Summary{}, false
	}

	return Summary{
		TotalInvested:     total,
		MinPayout:         minPayout,
		MaxPayout:         maxPayout,
		ExpectedProfit:    minPayout - total,
		ReturnRatePercent: roundHalfUp(float64(minPayout) / float64(total) * 100),
	}, true
}

// roundHalfUp rounds halves toward positive infinity
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
