package main

import (
	"context"
	"testing"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/config"
	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOptionsFrom(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Game.PlacementRule = "any"
	cfg.Journal.Enabled = false

	opts, err := optionsFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, board.Index{Col: 3, Row: 2}, opts.Start)
	assert.Equal(t, "any", opts.PlacementRule.Name())
	assert.Equal(t, 0, opts.JournalCapacity)
	assert.Equal(t, 300*time.Millisecond, opts.StepDuration)

	cfg.Game.PlacementRule = "diagonal"
	_, err = optionsFrom(cfg)
	assert.Error(t, err)
}

func TestPlayFinishes(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Game.Cols, cfg.Game.Rows = 3, 3
	cfg.Game.StartCol, cfg.Game.StartRow = 1, 1
	cfg.Game.Seed = 7
	cfg.Game.HandSize = 5

	outcome, err := play(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, outcome.state.Level, 1)
	assert.GreaterOrEqual(t, outcome.state.Score, 0)
	assert.Equal(t, outcome.stats.Placements, outcome.stats.Activations)
}
