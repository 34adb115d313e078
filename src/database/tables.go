package database

import "pairbot/src/datamodels"

var DbTables = []interface{}{
	&datamodels.BacktestRun{},
	&datamodels.BacktestPeriod{},
}
