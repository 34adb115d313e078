package metrics

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

func TestReportPlotterWritesPNG(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "plots", "ko_pep.png")
	plotter := NewReportPlotterFromConfig(&datamodels.PlotConfig{FilePath: filename, Width: 640, Height: 480})
	require.NoError(t, plotter.Plot(testReport(t)))

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	config, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, config.Width, 0)
	assert.Greater(t, config.Height, 0)
}

func TestReportPlotterRejectsEmptyReport(t *testing.T) {
	plotter := NewReportPlotter(filepath.Join(t.TempDir(), "empty.png"))
	err := plotter.Plot(&datamodels.BacktestReport{Name: "empty"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
