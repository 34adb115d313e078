package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
	"pairbot/src/utils/general"
)

// Load reads a backtest config. An empty path falls back to CONFIG_PATH and
// then to config.local.yaml at the repo root. Relative file paths inside the
// config are resolved against the config file's directory.
func Load(configPath string) (*datamodels.BacktestConfig, error) {
	if configPath == "" {
		// read config path from env var
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		currentDir := general.GetCurrentDir()
		// go up two levels to the repo root
		configPath = filepath.Join(currentDir, "..", "..", "config.local.yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", configPath)
	}

	var backtestConfig datamodels.BacktestConfig
	if err := v.Unmarshal(&backtestConfig); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", configPath)
	}
	if err := backtestConfig.ApplyDefaults(); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve config path")
	}
	resolvePaths(&backtestConfig, filepath.Dir(absPath))

	if err := backtestConfig.Validate(); err != nil {
		return nil, err
	}
	return &backtestConfig, nil
}

func resolvePaths(c *datamodels.BacktestConfig, baseDir string) {
	c.Pair.X.FilePath = general.ResolvePath(baseDir, c.Pair.X.FilePath)
	c.Pair.Y.FilePath = general.ResolvePath(baseDir, c.Pair.Y.FilePath)
	if c.MetricsWriter != nil {
		c.MetricsWriter.FilePath = general.ResolvePath(baseDir, c.MetricsWriter.FilePath)
	}
	if c.Plot != nil {
		c.Plot.FilePath = general.ResolvePath(baseDir, c.Plot.FilePath)
	}
}
