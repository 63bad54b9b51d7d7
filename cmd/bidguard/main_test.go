package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securetender/bidguard/internal/config"
)

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.DatabasePath = filepath.Join(dir, "actms.db")
	cfg.Model.Dir = filepath.Join(dir, "models")
	return &app{cfg: cfg}
}

func TestTrainCmdReportsCorpusShortfall(t *testing.T) {
	a := testApp(t)
	cmd := a.trainCmd()
	cmd.SetOut(io.Discard)

	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough bids to train")
	assert.Contains(t, err.Error(), "need at least 10, have 0")
}

func TestScoreCmdRequiresTrainedModel(t *testing.T) {
	a := testApp(t)
	cmd := a.scoreCmd()
	cmd.SetOut(io.Discard)

	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trained model")
}
