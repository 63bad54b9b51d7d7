package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/securetender/bidguard/internal/models"
	"github.com/securetender/bidguard/internal/storage"
	"github.com/securetender/bidguard/pkg/engine"
)

func (a *app) trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the anomaly model on the stored bid corpus and rescore all bids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			bids, err := store.GetBids(0)
			if err != nil {
				return err
			}

			if len(bids) < a.cfg.Model.TrainingFloor {
				return fmt.Errorf("not enough bids to train: need at least %d, have %d",
					a.cfg.Model.TrainingFloor, len(bids))
			}

			model := a.newModel()
			if !model.Train(models.Records(bids)) {
				return errors.New("model training failed")
			}

			if err := store.LogAudit("model_trained", "model", 0,
				fmt.Sprintf("trained on %d bids", len(bids))); err != nil {
				log.Warn().Err(err).Msg("audit log failed")
			}

			flagged, err := rescoreBids(store, model, bids)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Model trained on %d bids; %d flagged as suspicious\n", len(bids), flagged)
			return nil
		},
	}
}

func (a *app) scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Rescore all stored bids with the current model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			model := a.newModel()
			if !model.Trained() {
				return fmt.Errorf("no trained model available; run train first")
			}

			bids, err := store.GetBids(0)
			if err != nil {
				return err
			}

			flagged, err := rescoreBids(store, model, bids)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Scored %d bids; %d flagged as suspicious\n", len(bids), flagged)
			return nil
		},
	}
}

// rescoreBids scores the given bids, writes results back onto each row and
// raises an alert for every flagged bid. It returns the number flagged.
func rescoreBids(store *storage.Storage, model *engine.Model, bids []*models.Bid) (int, error) {
	results := model.Evaluate(models.Records(bids))
	if len(results) == 0 {
		return 0, nil
	}

	flagged := 0
	for i, b := range bids {
		res := results[i]
		if err := store.UpdateBidAnomaly(b.ID, res.Score, res.IsAnomaly); err != nil {
			return flagged, err
		}
		if !res.IsAnomaly {
			continue
		}
		flagged++
		if err := raiseAlert(store, b, res.Score); err != nil {
			log.Warn().Err(err).Int64("bid_id", b.ID).Msg("alert creation failed")
		}
	}
	return flagged, nil
}

// raiseAlert records a Suspicious Bid alert for a flagged bid. Strong
// deviations are high severity, the rest medium.
func raiseAlert(store *storage.Storage, b *models.Bid, score float64) error {
	severity := models.SeverityMedium
	if score < -0.1 {
		severity = models.SeverityHigh
	}
	msg := fmt.Sprintf("Suspicious bid detected from %s (score %.4f)", b.CompanyName, score)
	if _, err := store.CreateAlert(models.AlertTypeSuspiciousBid, severity, msg, "bid", b.ID); err != nil {
		return err
	}
	return store.LogAudit("alert_created", "bid", b.ID, msg)
}
