//go:build integration

package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairbot/src/config"
	"pairbot/src/datamodels"
)

func TestMainIntegration(t *testing.T) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		t.Skip("CONFIG_PATH not set")
	}
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg.Database, "config needs a postgres section")

	db, err := NewDBConnection(*cfg.Database)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	run := datamodels.BacktestRun{
		BaseModelUUID:     datamodels.BaseModelUUID{ID: uuid.New()},
		Name:              "integration",
		ConfigFingerprint: uuid.NewString(),
		StartedAt:         time.Now().UTC(),
		SymbolX:           "X",
		SymbolY:           "Y",
		Window:            2,
	}
	z := 1.5
	periods := []datamodels.BacktestPeriod{
		{Timestamp: time.Unix(1, 0).UTC(), PriceX: 10, PriceY: 5},
		{Timestamp: time.Unix(2, 0).UTC(), PriceX: 11, PriceY: 5, ZScore: &z, Position: datamodels.Short},
	}
	require.NoError(t, db.WriteRun(ctx, run, periods))

	stored, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "integration", stored.Name)

	storedPeriods, err := db.GetPeriods(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, storedPeriods, 2)
	assert.Nil(t, storedPeriods[0].ZScore)
	assert.Equal(t, datamodels.Short, storedPeriods[1].Position)

	runs, err := db.GetRunsByFingerprint(ctx, run.ConfigFingerprint)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
