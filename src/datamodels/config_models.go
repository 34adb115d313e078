package datamodels

import (
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"pairbot/src/utils/errors"
)

var validate = validator.New()

type BacktestConfig struct {
	Name          string               `mapstructure:"name" validate:"required"`
	Pair          PairConfig           `mapstructure:"pair"`
	Estimator     EstimatorConfig      `mapstructure:"estimator"`
	Signal        SignalConfig         `mapstructure:"signal"`
	Costs         CostConfig           `mapstructure:"costs"`
	MetricsWriter *MetricsWriterConfig `mapstructure:"metrics_writer"`
	Plot          *PlotConfig          `mapstructure:"plot"`
	Database      *PostgresConfig      `mapstructure:"postgres"`
	Storage       *StorageConfig       `mapstructure:"storage"`
}

type PairConfig struct {
	X CsvFeedConfig `mapstructure:"x"`
	Y CsvFeedConfig `mapstructure:"y"`
}

// TimestampFormatUnix reads the timestamp column as integer Unix seconds.
// Any other value is a Go reference layout such as "2006-01-02".
const TimestampFormatUnix = "unix"

type CsvFeedConfig struct {
	FilePath        string `mapstructure:"file_path" validate:"required"`
	RelationName    string `mapstructure:"relation_name"`
	HasHeader       bool   `mapstructure:"has_header"`
	TimestampColumn int    `mapstructure:"timestamp_column" validate:"gte=0"`
	PriceColumn     int    `mapstructure:"price_column" default:"1" validate:"gte=0,nefield=TimestampColumn"`
	TimestampFormat string `mapstructure:"timestamp_format" default:"unix"`
	StartTime       string `mapstructure:"start_time"`
	EndTime         string `mapstructure:"end_time"`
}

type EstimatorConfig struct {
	Window  int `mapstructure:"window" validate:"gte=1"`
	Workers int `mapstructure:"workers" default:"1" validate:"gte=1"`
}

// SignalConfig holds the z-score thresholds of the position state machine.
type SignalConfig struct {
	EntryThreshold float64 `mapstructure:"entry_threshold" json:"entry_threshold" validate:"gt=0"`
	ExitThreshold  float64 `mapstructure:"exit_threshold" json:"exit_threshold" validate:"gte=0,ltfield=EntryThreshold"`
	StopZ          float64 `mapstructure:"stop_z" json:"stop_z" default:"3.0" validate:"gtfield=EntryThreshold"`
}

type CostConfig struct {
	TransactionCost float64 `mapstructure:"transaction_cost" validate:"gte=0"`
}

type MetricsWriterConfig struct {
	FileWriter bool   `mapstructure:"file_writer"`
	FilePath   string `mapstructure:"file_path" validate:"required_if=FileWriter true"`
	Format     string `mapstructure:"format" default:"csv" validate:"oneof=csv json"`
	DBWriter   bool   `mapstructure:"db_writer"`
}

type PlotConfig struct {
	FilePath string `mapstructure:"file_path" validate:"required"`
	Width    int    `mapstructure:"width" default:"1200" validate:"gt=0"`
	Height   int    `mapstructure:"height" default:"900" validate:"gt=0"`
}

type PostgresConfig struct {
	Database string `mapstructure:"database"`
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	Port     int    `mapstructure:"port"`
	SSL      struct {
		CA   string `mapstructure:"ca"`
		Cert string `mapstructure:"cert"`
		Key  string `mapstructure:"key"`
		Mode string `mapstructure:"mode"`
	} `mapstructure:"ssl"`
	URI  string `mapstructure:"uri"`
	User string `mapstructure:"user"`
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// ApplyDefaults fills zero fields from their default tags.
func (c *BacktestConfig) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to apply config defaults")
	}
	return nil
}

func (c *BacktestConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidationErrors(err)
	}
	if c.MetricsWriter != nil && c.MetricsWriter.DBWriter && c.Database == nil {
		return errors.Validationf("metrics_writer.db_writer requires a postgres section")
	}
	return nil
}

func describeValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.WrapE(errors.ErrValidation, err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fieldErrorMessage(fe))
	}
	return errors.Validationf("%s", strings.Join(messages, "; "))
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "ltfield":
		return field + " must be less than " + fe.Param()
	case "gtfield":
		return field + " must be greater than " + fe.Param()
	case "nefield":
		return field + " must differ from " + fe.Param()
	case "oneof":
		return field + " must be one of [" + fe.Param() + "]"
	default:
		return field + " failed " + fe.Tag() + " check"
	}
}
