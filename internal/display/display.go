// Package display turns an allocation into the strings a front end shows.
package display

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yourusername/flat-stake/internal/allocator"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/models"
)

const (
	placeholder  = "-"
	excludedText = "excluded"
)

// Row is one outcome line in the stake table
type Row struct {
	OutcomeID  int    `json:"outcome_id"`
	Label      int    `json:"label"`
	Odds       string `json:"odds"`
	Stake      int64  `json:"stake"`
	StakeText  string `json:"stake_text"`
	PayoutText string `json:"payout_text"`
	Excluded   bool   `json:"excluded"`
}

// View is the rendered calculator. When Visible is false the summary block is hidden.
type View struct {
	Visible        bool   `json:"visible"`
	OutcomeCount   string `json:"outcome_count"`
	Rows           []Row  `json:"rows"`
	TotalInvested  string `json:"total_invested,omitempty"`
	ExpectedPayout string `json:"expected_payout,omitempty"`
	ExpectedProfit string `json:"expected_profit,omitempty"`
	ProfitNegative bool   `json:"profit_negative"`
	ReturnRate     string `json:"return_rate,omitempty"`
}

// Formatter renders views with locale-aware number grouping
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for the given locale
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Default returns a Japanese-locale formatter ("16,500")
func Default() *Formatter {
	return NewFormatter(language.Japanese)
}

// Number formats an integer with digit grouping
func (f *Formatter) Number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Payout formats the expected payout: a single value when every outcome pays
// the same, otherwise the minimum as a lower bound ("16,500~").
func (f *Formatter) Payout(s allocator.Summary) string {
	if s.IsPayoutRange() {
		return f.Number(s.MinPayout) + "~"
	}
	return f.Number(s.MinPayout)
}

// Profit formats the expected profit with an explicit sign when non-negative
func (f *Formatter) Profit(profit int64) string {
	if profit >= 0 {
		return "+" + f.Number(profit)
	}
	return f.Number(profit)
}

// OutcomeCount formats the number of rows
func (f *Formatter) OutcomeCount(n int) string {
	if n == 1 {
		return "1 runner"
	}
	return f.printer.Sprintf("%d runners", n)
}

// Render builds the view for a state and its allocation result. A
// models.ErrNoResult error yields a hidden summary with placeholder rows.
func (f *Formatter) Render(state models.State, result *allocator.Allocation, err error) View {
	view := View{
		OutcomeCount: f.OutcomeCount(len(state.Outcomes)),
		Rows:         make([]Row, len(state.Outcomes)),
	}

	for i, o := range state.Outcomes {
		view.Rows[i] = Row{
			OutcomeID:  o.ID,
			Label:      o.Label,
			Odds:       input.FormatOdds(o.Odds),
			StakeText:  placeholder,
			PayoutText: placeholder,
		}
	}

	if err != nil || result == nil {
		return view
	}

	for i := range view.Rows {
		stake, ok := stakeAt(result, i, view.Rows[i].OutcomeID)
		if !ok {
			continue
		}
		switch {
		case !stake.Eligible:
			// no usable odds: the row keeps its placeholder
		case stake.Stake > 0:
			view.Rows[i].Stake = stake.Stake
			view.Rows[i].StakeText = f.Number(stake.Stake)
			view.Rows[i].PayoutText = f.Number(stake.Payout)
		default:
			view.Rows[i].Excluded = true
			view.Rows[i].StakeText = excludedText
			view.Rows[i].PayoutText = excludedText
		}
	}

	summary := result.Summary
	view.Visible = true
	view.TotalInvested = f.Number(summary.TotalInvested)
	view.ExpectedPayout = f.Payout(summary)
	view.ExpectedProfit = f.Profit(summary.ExpectedProfit)
	view.ProfitNegative = summary.ExpectedProfit < 0
	view.ReturnRate = f.printer.Sprintf("%d%%", summary.ReturnRatePercent)
	return view
}

// stakeAt prefers the positional match, since results keep input order
func stakeAt(result *allocator.Allocation, i, id int) (allocator.Stake, bool) {
	if i < len(result.Stakes) && result.Stakes[i].OutcomeID == id {
		return result.Stakes[i], true
	}
	return result.StakeFor(id)
}
