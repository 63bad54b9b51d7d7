package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show model and store status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			tenders, bids, alerts, err := store.Counts()
			if err != nil {
				return err
			}

			status := a.newModel().Status()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model:    %s\n", status.ModelType)
			fmt.Fprintf(out, "Trained:  %v\n", status.Trained)
			fmt.Fprintf(out, "Contamination: %.2f\n", status.Contamination)
			fmt.Fprintf(out, "Ensemble size: %d\n", status.EnsembleSize)
			fmt.Fprintf(out, "Features: %s\n", strings.Join(status.FeatureNames, ", "))
			fmt.Fprintf(out, "Store:    %d tenders, %d bids, %d active alerts\n", tenders, bids, alerts)
			fmt.Fprintf(out, "Can train: %v\n", bids >= int64(a.cfg.Model.TrainingFloor))
			return nil
		},
	}
}
