package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/models"
)

// StateValidator reports suspicious calculator input. Warnings never block an
// allocation; invalid values are already coerced to ineligible outcomes.
type StateValidator struct {
	logger *logrus.Logger
	unit   int64
}

// NewStateValidator creates a new state validator
func NewStateValidator(unit int64, logger *logrus.Logger) *StateValidator {
	return &StateValidator{logger: logger, unit: unit}
}

// ValidateBudget checks the budget against the stake unit
func (v *StateValidator) ValidateBudget(budget int64) []string {
	var warnings []string

	if budget <= 0 {
		warnings = append(warnings, fmt.Sprintf("budget must be positive, got %d", budget))
		return warnings
	}

	if budget < v.unit {
		warnings = append(warnings, fmt.Sprintf("budget %d is below the stake unit %d", budget, v.unit))
	} else if budget%v.unit != 0 {
		warnings = append(warnings, fmt.Sprintf("budget %d is not a multiple of %d, %d will stay unstaked", budget, v.unit, budget%v.unit))
	}

	return warnings
}

// ValidateOutcome checks a single outcome
func (v *StateValidator) ValidateOutcome(o models.Outcome) []string {
	var warnings []string

	if o.Label <= 0 {
		warnings = append(warnings, fmt.Sprintf("outcome %d: label must be positive, got %d", o.ID, o.Label))
	}

	switch {
	case !o.Eligible():
		warnings = append(warnings, fmt.Sprintf("#%d: no valid odds, excluded", o.Label))
	case o.Odds < 1:
		warnings = append(warnings, fmt.Sprintf("#%d: odds %s pay back less than the stake", o.Label, input.FormatOdds(o.Odds)))
	}

	return warnings
}

// ValidateState checks the budget, every outcome and label uniqueness
func (v *StateValidator) ValidateState(state models.State) []string {
	warnings := v.ValidateBudget(state.Budget)

	seen := make(map[int]bool, len(state.Outcomes))
	for _, o := range state.Outcomes {
		warnings = append(warnings, v.ValidateOutcome(o)...)
		if o.Label > 0 && seen[o.Label] {
			warnings = append(warnings, fmt.Sprintf("#%d: label used more than once", o.Label))
		}
		seen[o.Label] = true
	}

	if len(warnings) > 0 && v.logger != nil {
		v.logger.WithFields(logrus.Fields{
			"budget":   state.Budget,
			"outcomes": len(state.Outcomes),
			"warnings": len(warnings),
		}).Debug("Calculator input has warnings")
	}
	return warnings
}
