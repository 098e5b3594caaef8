// Package allocator splits a betting budget across outcomes so that the payout
// is as even as possible whichever outcome wins.
//
// Stakes start proportional to each outcome's implied probability (1/odds),
// rounded down to the stake unit. The rounding remainder is then handed out one
// unit at a time to the outcome with the lowest current payout:
//
//	ip_i      = 1 / odds_i
//	stake_i   = floor(budget * ip_i / sum(ip) / unit) * unit
//	remainder = budget - sum(stake)
package allocator

import (
	"fmt"
	"math"

	"github.com/yourusername/flat-stake/internal/models"
)

// DefaultUnit is the smallest allocatable stake
const DefaultUnit int64 = 100

// Stake is the allocation for a single outcome. Ineligible outcomes are kept
// with a zero stake so callers can render every row.
type Stake struct {
	OutcomeID int     `json:"outcome_id"`
	Label     int     `json:"label"`
	Odds      float64 `json:"odds"`
	Eligible  bool    `json:"eligible"`
	Stake     int64   `json:"stake"`
	Payout    int64   `json:"payout"`
}

// Allocation is the result of a single allocation run
type Allocation struct {
	Budget         int64   `json:"budget"`
	Unit           int64   `json:"unit"`
	Stakes         []Stake `json:"stakes"`
	Summary        Summary `json:"summary"`
	RemainderSteps int     `json:"remainder_steps"`
}

// StakeFor returns the stake for the given outcome id
func (a *Allocation) StakeFor(id int) (Stake, bool) {
	for _, s := range a.Stakes {
		if s.OutcomeID == id {
			return s, true
		}
	}
	return Stake{}, false
}

// Allocator computes flat-profit stakes. It holds no state between calls and is
// safe for concurrent use.
type Allocator struct {
	unit int64
}

// New creates an allocator with the given stake unit
func New(unit int64) (*Allocator, error) {
	if unit <= 0 {
		return nil, models.ErrInvalidUnit
	}
	return &Allocator{unit: unit}, nil
}

// Default returns an allocator using DefaultUnit
func Default() *Allocator {
	return &Allocator{unit: DefaultUnit}
}

// Unit returns the stake granularity
func (a *Allocator) Unit() int64 {
	return a.unit
}

// Allocate is shorthand for Default().Allocate
func Allocate(budget int64, outcomes []models.Outcome) (*Allocation, error) {
	return Default().Allocate(budget, outcomes)
}

// AllocateState runs the allocation for a session snapshot
func (a *Allocator) AllocateState(state models.State) (*Allocation, error) {
	return a.Allocate(state.Budget, state.Outcomes)
}

// Allocate distributes budget across the eligible outcomes. It returns
// models.ErrNoResult when there is nothing to show, and an error wrapping
// models.ErrOutOfRange when the budget exceeds models.MaxBudget or eligible
// odds exceed models.MaxOdds. Input order is part of the contract: it decides
// ties during remainder distribution.
func (a *Allocator) Allocate(budget int64, outcomes []models.Outcome) (*Allocation, error) {
	eligible := make([]int, 0, len(outcomes))
	for i, o := range outcomes {
		if o.Eligible() {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 || budget <= 0 {
		return nil, models.ErrNoResult
	}
	if budget > models.MaxBudget {
		return nil, fmt.Errorf("budget %d exceeds %d: %w", budget, models.MaxBudget, models.ErrOutOfRange)
	}
	for _, i := range eligible {
		if outcomes[i].Odds > models.MaxOdds {
			return nil, fmt.Errorf("odds %g exceed %g: %w", outcomes[i].Odds, models.MaxOdds, models.ErrOutOfRange)
		}
	}

	totalIP := 0.0
	for _, i := range eligible {
		totalIP += outcomes[i].ImpliedProbability()
	}

	stakes := make([]int64, len(outcomes))
	var allocated int64
	unit := float64(a.unit)
	for _, i := range eligible {
		raw := float64(budget) * (outcomes[i].ImpliedProbability() / totalIP)
		stakes[i] = int64(math.Floor(raw/unit)) * a.unit
		allocated += stakes[i]
	}

	// float rounding can push the proportional pass past the budget; take the
	// excess back from the highest payouts
	for allocated > budget {
		best := -1
		highest := math.Inf(-1)
		for _, i := range eligible {
			current := float64(stakes[i]) * outcomes[i].Odds
			if stakes[i] >= a.unit && current > highest {
				highest = current
				best = i
			}
		}
		if best == -1 {
			break
		}
		stakes[best] -= a.unit
		allocated -= a.unit
	}

	remainder := budget - allocated
	steps := 0
	for remainder >= a.unit {
		best := -1
		lowest := math.Inf(1)
		for _, i := range eligible {
			current := float64(stakes[i]) * outcomes[i].Odds
			if current < lowest {
				lowest = current
				best = i
			}
		}
		if best == -1 {
			break
		}
		stakes[best] += a.unit
		remainder -= a.unit
		steps++
	}

	result := &Allocation{
		Budget:         budget,
		Unit:           a.unit,
		Stakes:         make([]Stake, len(outcomes)),
		RemainderSteps: steps,
	}
	for i, o := range outcomes {
		result.Stakes[i] = Stake{
			OutcomeID: o.ID,
			Label:     o.Label,
			Odds:      o.Odds,
			Eligible:  o.Eligible(),
		}
	}
	for _, i := range eligible {
		result.Stakes[i].Stake = stakes[i]
		result.Stakes[i].Payout = int64(math.Floor(float64(stakes[i]) * outcomes[i].Odds))
	}

	summary, ok := summarize(result.Stakes)
	if !ok {
		return nil, models.ErrNoResult
	}
	result.Summary = summary
	return result, nil
}
