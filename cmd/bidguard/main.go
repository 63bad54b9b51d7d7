// Command bidguard trains and runs anomaly detection over procurement bids.
package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/securetender/bidguard/internal/config"
	"github.com/securetender/bidguard/internal/storage"
	"github.com/securetender/bidguard/pkg/engine"
)

type app struct {
	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var cfgPath string

	root := &cobra.Command{
		Use:           "bidguard",
		Short:         "Anomaly detection for procurement bids",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			setupLogging(cfg.Logging)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (optional)")

	root.AddCommand(
		a.trainCmd(),
		a.scoreCmd(),
		a.analyzeCmd(),
		a.statusCmd(),
		a.seedCmd(),
		a.importCmd(),
	)
	return root
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func (a *app) openStorage() (*storage.Storage, error) {
	return storage.New(a.cfg.Storage.DatabasePath)
}

func (a *app) newModel() *engine.Model {
	return engine.New(
		engine.WithContamination(a.cfg.Model.Contamination),
		engine.WithEnsembleSize(a.cfg.Model.EnsembleSize),
		engine.WithVocabularySize(a.cfg.Model.VocabularySize),
		engine.WithSeed(a.cfg.Model.Seed),
		engine.WithTrainingFloor(a.cfg.Model.TrainingFloor),
		engine.WithStore(engine.NewFileStore(a.cfg.Model.Dir)),
	)
}
