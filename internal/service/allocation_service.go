// Package service wires the allocator to logging and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/flat-stake/internal/allocator"
	"github.com/yourusername/flat-stake/internal/logger"
	"github.com/yourusername/flat-stake/internal/metrics"
	"github.com/yourusername/flat-stake/internal/models"
)

// AllocationService runs allocations and records them. Like the allocator it
// wraps, it keeps no state between calls.
type AllocationService struct {
	allocator *allocator.Allocator
	logger    *logger.AllocationLogger
}

// NewAllocationService creates a new allocation service for the given stake unit
func NewAllocationService(unit int64, log *logrus.Logger) (*AllocationService, error) {
	alloc, err := allocator.New(unit)
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator: %w", err)
	}

	return &AllocationService{
		allocator: alloc,
		logger:    logger.NewAllocationLogger(log),
	}, nil
}

// Unit returns the stake unit used by the service
func (s *AllocationService) Unit() int64 {
	return s.allocator.Unit()
}

// AllocateState allocates a session snapshot
func (s *AllocationService) AllocateState(state models.State) (*allocator.Allocation, error) {
	return s.Allocate(state.Budget, state.Outcomes)
}

// Allocate runs a single allocation. models.ErrNoResult is passed through
// unwrapped so callers can hide the result area.
func (s *AllocationService) Allocate(budget int64, outcomes []models.Outcome) (*allocator.Allocation, error) {
	start := time.Now()
	result, err := s.allocator.Allocate(budget, outcomes)
	elapsed := time.Since(start)

	eligible := models.State{Outcomes: outcomes}.EligibleCount()
	if err != nil {
		if errors.Is(err, models.ErrNoResult) {
			metrics.RecordNoResult()
			s.logger.LogNoResult(budget, len(outcomes), eligible)
		}
		return nil, err
	}

	metrics.RecordAllocation(elapsed.Seconds(), result.RemainderSteps, eligible)
	s.logger.LogAllocation(result, len(outcomes), elapsed)
	return result, nil
}

// SelfCheck runs a fixed allocation and verifies its invariants. It is used
// as a readiness check.
func (s *AllocationService) SelfCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unit := s.allocator.Unit()
	budget := 100 * unit
	result, err := s.allocator.Allocate(budget, []models.Outcome{
		{ID: 1, Label: 1, Odds: 2.5},
		{ID: 2, Label: 2, Odds: 5.0},
	})
	if err != nil {
		return fmt.Errorf("self-check allocation failed: %w", err)
	}

	var total int64
	for _, stake := range result.Stakes {
		if stake.Stake%unit != 0 {
			return fmt.Errorf("self-check: stake %d is not a multiple of %d", stake.Stake, unit)
		}
		total += stake.Stake
	}
	if total > budget || budget-total >= unit {
		return fmt.Errorf("self-check: invested %d of budget %d", total, budget)
	}
	return nil
}
