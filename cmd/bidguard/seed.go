package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securetender/bidguard/internal/seed"
)

func (a *app) seedCmd() *cobra.Command {
	var tenders, bids int
	var rngSeed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic tender/bid corpus for demos and training",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			gen := seed.NewGenerator(rngSeed)

			generated := gen.Tenders(tenders)
			for _, t := range generated {
				if _, err := store.InsertTender(t); err != nil {
					return err
				}
			}
			for _, b := range gen.Bids(generated, bids) {
				if _, err := store.InsertBid(b); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tenders and %d bids\n", tenders, bids)
			return nil
		},
	}

	cmd.Flags().IntVar(&tenders, "tenders", 4, "number of tenders to generate")
	cmd.Flags().IntVar(&bids, "bids", 30, "number of bids to generate")
	cmd.Flags().Int64Var(&rngSeed, "rng-seed", 1, "random seed for the generated corpus")
	return cmd
}
