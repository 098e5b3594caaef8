package models

import "math"

// DefaultBudget is the budget a fresh or reset session starts with
const DefaultBudget int64 = 10000

// Range limits. Budgets up to 2^53 convert to float64 exactly and
// MaxBudget*MaxOdds stays below math.MaxInt64, so every payout fits in an int64.
const (
	MaxBudget int64   = 1 << 53
	MaxOdds   float64 = 1000
)

// Outcome represents a single wagered outcome (a runner) and its decimal odds
type Outcome struct {
	ID    int     `json:"id" validate:"required,gt=0"`
	Label int     `json:"label"`
	Odds  float64 `json:"odds"`
}

// Eligible reports whether the outcome takes part in allocation.
// Zero, negative, NaN and infinite odds are excluded.
func (o Outcome) Eligible() bool {
	return o.Odds > 0 && !math.IsInf(o.Odds, 1)
}

// ImpliedProbability returns the naive implied probability 1/odds, or 0 if ineligible
func (o Outcome) ImpliedProbability() float64 {
	if !o.Eligible() {
		return 0
	}
	return 1.0 / o.Odds
}

// State is an immutable snapshot of a calculator session
type State struct {
	Budget   int64     `json:"budget"`
	Outcomes []Outcome `json:"outcomes" validate:"dive"`
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	outcomes := make([]Outcome, len(s.Outcomes))
	copy(outcomes, s.Outcomes)
	return State{Budget: s.Budget, Outcomes: outcomes}
}

// EligibleCount returns the number of outcomes with usable odds
func (s State) EligibleCount() int {
	count := 0
	for _, o := range s.Outcomes {
		if o.Eligible() {
			count++
		}
	}
	return count
}
