package strategies

import (
	"math"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// DefaultStopZ is the stop-loss z-score used by NewThresholds.
const DefaultStopZ = 3.0

// Thresholds are the z-score levels of the mean reversion state machine.
type Thresholds struct {
	Entry float64
	Exit  float64
	StopZ float64
}

func NewThresholds(entry, exit float64) Thresholds {
	return Thresholds{Entry: entry, Exit: exit, StopZ: DefaultStopZ}
}

// ThresholdsFromConfig maps the signal section of a run config.
func ThresholdsFromConfig(config datamodels.SignalConfig) Thresholds {
	return Thresholds{Entry: config.EntryThreshold, Exit: config.ExitThreshold, StopZ: config.StopZ}
}

// Validate requires 0 <= exit < entry < stopZ, all finite.
func (th Thresholds) Validate() error {
	for _, v := range []float64{th.Entry, th.Exit, th.StopZ} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Validationf("thresholds must be finite, got %+v", th)
		}
	}
	if th.Entry <= 0 {
		return errors.Validationf("entry threshold must be positive, got %v", th.Entry)
	}
	if th.Exit < 0 || th.Exit >= th.Entry {
		return errors.Validationf("exit threshold must be in [0, %v), got %v", th.Entry, th.Exit)
	}
	if th.StopZ <= th.Entry {
		return errors.Validationf("stop z %v must exceed entry threshold %v", th.StopZ, th.Entry)
	}
	return nil
}

// TransitionFunc moves the machine one step on a new z-score.
type TransitionFunc func(state datamodels.Position, z float64, th Thresholds) datamodels.Position

// Step shorts a rich spread and buys a cheap one. An open trade closes when
// the spread is back inside the exit band, or when it runs past stopZ
// against the trade. Exit is checked before the stop. NaN and infinite
// z-scores leave the state unchanged.
func Step(state datamodels.Position, z float64, th Thresholds) datamodels.Position {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return state
	}
	switch state {
	case datamodels.Flat:
		if z > th.Entry {
			return datamodels.Short
		}
		if z < -th.Entry {
			return datamodels.Long
		}
	case datamodels.Long:
		if math.Abs(z) < th.Exit || z < -th.StopZ {
			return datamodels.Flat
		}
	case datamodels.Short:
		if math.Abs(z) < th.Exit || z > th.StopZ {
			return datamodels.Flat
		}
	}
	return state
}

// GeneratePositions runs Step over the z-scores from Flat. The result is
// aligned with zscore.
func GeneratePositions(zscore datamodels.TimeSeries, th Thresholds) (datamodels.PositionSeries, error) {
	if err := th.Validate(); err != nil {
		return datamodels.PositionSeries{}, err
	}
	return foldPositions(zscore, th, Step), nil
}

func foldPositions(zscore datamodels.TimeSeries, th Thresholds, transition TransitionFunc) datamodels.PositionSeries {
	positions := make([]datamodels.Position, zscore.Len())
	state := datamodels.Flat
	for i, z := range zscore.Values {
		state = transition(state, z, th)
		positions[i] = state
	}
	return datamodels.WithValues(zscore, "position", positions)
}
