package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/flat-stake/internal/api"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/models"
	"github.com/yourusername/flat-stake/internal/service"
)

var (
	budgetFlag string
	oddsFlag   string
	jsonOutput bool
)

func init() {
	for _, cmd := range []*cobra.Command{allocateCmd, shareCmd} {
		cmd.Flags().StringVarP(&budgetFlag, "budget", "b", "", "Budget to split (defaults to allocation.default_budget)")
		cmd.Flags().StringVarP(&oddsFlag, "odds", "o", "", `Comma separated odds, either "2.5,5.0" or "label=odds" pairs like "3=2.5,7=5.0"`)
		_ = cmd.MarkFlagRequired("odds")
	}
	allocateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
}

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute flat-profit stakes for a budget and a set of odds",
	Example: `  flatstake allocate --budget 10000 --odds 2.5,5.0
  flatstake allocate -b 10000 -o 3=2.5,7=5.0 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newAllocationService()
		if err != nil {
			return err
		}
		return runAllocate(cmd, svc, display.Default(), flagState())
	},
}

// flagState builds the snapshot from --budget and --odds
func flagState() models.State {
	budget := cfg.Allocation.DefaultBudget
	if budgetFlag != "" {
		budget = input.ParseBudget(budgetFlag)
	}
	return models.State{Budget: budget, Outcomes: input.ParseOutcomeList(oddsFlag)}
}

func runAllocate(cmd *cobra.Command, svc *service.AllocationService, f *display.Formatter, state models.State) error {
	if len(state.Outcomes) > cfg.Allocation.MaxOutcomes {
		return fmt.Errorf("too many outcomes: %d (max %d)", len(state.Outcomes), cfg.Allocation.MaxOutcomes)
	}

	result, err := svc.AllocateState(state)
	if err != nil && !errors.Is(err, models.ErrNoResult) {
		return err
	}
	warnings := service.NewStateValidator(svc.Unit(), appLog).ValidateState(state)
	view := f.Render(state, result, err)
	out := cmd.OutOrStdout()

	if jsonOutput {
		resp := api.AllocateResponse{Result: api.ResultOK, View: view, Warnings: warnings}
		if err != nil {
			resp.Result = api.ResultNone
		} else {
			resp.Allocation = result
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printWarnings(cmd.ErrOrStderr(), warnings)
	printView(out, f, state.Budget, view)
	if result != nil && result.RemainderSteps > 0 {
		fmt.Fprintf(out, "Remainder units: %d\n", result.RemainderSteps)
	}
	return nil
}
