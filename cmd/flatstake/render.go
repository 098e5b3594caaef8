package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yourusername/flat-stake/internal/display"
)

func printView(w io.Writer, f *display.Formatter, budget int64, view display.View) {
	fmt.Fprintf(w, "Budget: %s  (%s)\n", f.Number(budget), view.OutcomeCount)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tNo.\tOdds\tStake\tPayout\t")
	for _, row := range view.Rows {
		fmt.Fprintf(tw, "%d\t#%d\t%s\t%s\t%s\t\n", row.OutcomeID, row.Label, row.Odds, row.StakeText, row.PayoutText)
	}
	_ = tw.Flush()

	if !view.Visible {
		fmt.Fprintln(w, "No result")
		return
	}

	fmt.Fprintf(w, "Total invested:  %s\n", view.TotalInvested)
	fmt.Fprintf(w, "Expected payout: %s\n", view.ExpectedPayout)
	fmt.Fprintf(w, "Expected profit: %s\n", view.ExpectedProfit)
	fmt.Fprintf(w, "Return rate:     %s\n", view.ReturnRate)
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
