package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/securetender/bidguard/pkg/engine"
)

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <bid-id>",
		Short: "Score a single stored bid and explain the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bidID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid bid id %q", args[0])
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			model := a.newModel()
			if !model.Trained() {
				return fmt.Errorf("no trained model available; run train first")
			}

			bid, err := store.GetBid(bidID)
			if err != nil {
				return err
			}

			record := bid.Record()
			score, flagged := model.ScoreOne(record)

			if err := store.UpdateBidAnomaly(bid.ID, score, flagged); err != nil {
				return err
			}
			if flagged {
				if err := raiseAlert(store, bid, score); err != nil {
					log.Warn().Err(err).Int64("bid_id", bid.ID).Msg("alert creation failed")
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bid %d (%s, $%.2f)\n", bid.ID, bid.CompanyName, bid.BidAmount)
			fmt.Fprintf(out, "  score:     %.4f\n", score)
			fmt.Fprintf(out, "  suspicious: %v\n", flagged)
			for _, reason := range engine.Explain(record, score) {
				fmt.Fprintf(out, "  - %s\n", reason)
			}
			return nil
		},
	}
}
