// Package logger provides allocation logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/flat-stake/internal/allocator"
)

// AllocationLogger provides dedicated logging for allocation runs.
type AllocationLogger struct {
	*logrus.Entry
}

// NewAllocationLogger creates a new allocation logger.
func NewAllocationLogger(baseLogger *logrus.Logger) *AllocationLogger {
	return &AllocationLogger{
		Entry: baseLogger.WithField("component", "allocation"),
	}
}

// LogAllocation logs a completed allocation.
func (al *AllocationLogger) LogAllocation(result *allocator.Allocation, outcomes int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"budget":              result.Budget,
		"unit":                result.Unit,
		"outcomes":            outcomes,
		"total_invested":      result.Summary.TotalInvested,
		"min_payout":          result.Summary.MinPayout,
		"max_payout":          result.Summary.MaxPayout,
		"expected_profit":     result.Summary.ExpectedProfit,
		"return_rate_percent": result.Summary.ReturnRatePercent,
		"remainder_steps":     result.RemainderSteps,
		"duration_us":         duration.Microseconds(),
	}).Debug("Allocation computed")
}

// LogNoResult logs an allocation that produced nothing to show.
func (al *AllocationLogger) LogNoResult(budget int64, outcomes, eligible int) {
	al.WithFields(logrus.Fields{
		"budget":   budget,
		"outcomes": outcomes,
		"eligible": eligible,
	}).Debug("Allocation produced no result")
}
