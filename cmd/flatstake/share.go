package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/models"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print the share text and intent URL for an allocation",
	Example: `  flatstake share --budget 10000 --odds 3=2.5,7=5.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newAllocationService()
		if err != nil {
			return err
		}
		formatter := display.Default()
		sharer, err := newSharer(formatter)
		if err != nil {
			return err
		}

		result, err := svc.AllocateState(flagState())
		if errors.Is(err, models.ErrNoResult) {
			return errors.New("nothing to share: no stakes for this budget and odds")
		}
		if err != nil {
			return err
		}

		post, err := sharer.Compose(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), post.Text)
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), post.URL)
		return nil
	},
}
