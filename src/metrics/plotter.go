package metrics

import (
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// ReportPlotter renders a backtest report as a 2x2 grid of panels in a PNG:
// prices, z-score with thresholds, position, cumulative returns.
type ReportPlotter struct {
	filename string
	width    vg.Length
	height   vg.Length
}

func NewReportPlotter(filename string) *ReportPlotter {
	return &ReportPlotter{
		filename: filename,
		width:    vg.Points(1200),
		height:   vg.Points(900),
	}
}

func NewReportPlotterFromConfig(config *datamodels.PlotConfig) *ReportPlotter {
	return NewReportPlotter(config.FilePath).WithSize(config.Width, config.Height)
}

func (rp *ReportPlotter) WithSize(width, height int) *ReportPlotter {
	rp.width = vg.Points(float64(width))
	rp.height = vg.Points(float64(height))
	return rp
}

func (rp *ReportPlotter) Filename() string {
	return rp.filename
}

func (rp *ReportPlotter) Plot(report *datamodels.BacktestReport) error {
	if report.Result.Len() == 0 {
		return errors.Validationf("report %s has no periods to plot", report.Name)
	}
	slog.Info("ReportPlotter plotting via file", "filename", rp.filename)

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}

	panels := [][]*plot.Plot{
		{pricesPanel(report), zScorePanel(report)},
		{positionPanel(report), returnsPanel(report)},
	}

	img := vgimg.New(rp.width, rp.height)
	dc := draw.New(img)
	canvases := plot.Align(panels, tiles, dc)
	for i := range panels {
		for j := range panels[i] {
			if panels[i][j] != nil {
				panels[i][j].Draw(canvases[i][j])
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(rp.filename), 0755); err != nil {
		return errors.Wrap(err, "failed to create plot directory")
	}
	file, err := os.Create(rp.filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", rp.filename)
	}
	defer file.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		return errors.Wrapf(err, "failed to write %s", rp.filename)
	}
	return nil
}

func newPanel(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, name string, index []time.Time, values []float64, colorIndex int) {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(index[i].Unix()), Y: v})
	}
	if len(pts) == 0 {
		return
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		slog.Error("Error creating line", "line", name, "error", err)
		return
	}
	line.Color = plotutil.Color(colorIndex)
	p.Add(line)
	p.Legend.Add(name, line)
}

func addLevel(p *plot.Plot, index []time.Time, level float64) {
	if len(index) == 0 {
		return
	}
	pts := plotter.XYs{
		{X: float64(index[0].Unix()), Y: level},
		{X: float64(index[len(index)-1].Unix()), Y: level},
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return
	}
	line.Color = color.Gray{Y: 128}
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(line)
}

func pricesPanel(report *datamodels.BacktestReport) *plot.Plot {
	p := newPanel("Prices", "Price")
	hedged := make([]float64, report.PriceY.Len())
	for i := range hedged {
		hedged[i] = report.Estimates.Alphas.Values[i] + report.Estimates.Betas.Values[i]*report.PriceY.Values[i]
	}
	addLine(p, report.PriceX.Name, report.PriceX.Index, report.PriceX.Values, 0)
	addLine(p, "hedged "+report.PriceY.Name, report.PriceY.Index, hedged, 1)
	return p
}

func zScorePanel(report *datamodels.BacktestReport) *plot.Plot {
	p := newPanel("Spread z-score", "z")
	index := report.ZScore.Index
	for _, level := range []float64{
		report.Signal.EntryThreshold, -report.Signal.EntryThreshold,
		report.Signal.ExitThreshold, -report.Signal.ExitThreshold,
		report.Signal.StopZ, -report.Signal.StopZ,
	} {
		addLevel(p, index, level)
	}
	addLine(p, "z", index, report.ZScore.Values, 2)
	return p
}

func positionPanel(report *datamodels.BacktestReport) *plot.Plot {
	p := newPanel("Position", "Units of spread")
	positions := make([]float64, report.Result.Positions.Len())
	for i, position := range report.Result.Positions.Values {
		positions[i] = position.Float()
	}
	addLine(p, "position", report.Result.Positions.Index, positions, 3)
	p.Y.Min, p.Y.Max = -1.2, 1.2
	return p
}

func returnsPanel(report *datamodels.BacktestReport) *plot.Plot {
	p := newPanel("Cumulative return", "Return")
	addLine(p, "gross", report.Result.CumGrossReturns.Index, report.Result.CumGrossReturns.Values, 0)
	addLine(p, "net", report.Result.CumNetReturns.Index, report.Result.CumNetReturns.Values, 1)
	return p
}
