package metrics

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatJSON FileFormat = "json"
)

// FileResultWriter writes each report as a per-period table plus a JSON summary.
// Files are named <yyyymmdd>_<run name>_periods.{csv,jsonl} and
// <yyyymmdd>_<run name>_summary.json.
type FileResultWriter struct {
	baseDir    string
	fileFormat FileFormat
	files      []string
}

func NewFileResultWriter(baseDir string, format FileFormat) (*FileResultWriter, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatJSON {
		return nil, errors.Validationf("unknown file format %q", format)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create results directory")
	}
	return &FileResultWriter{
		baseDir:    baseDir,
		fileFormat: format,
	}, nil
}

func (w *FileResultWriter) Files() []string {
	return w.files
}

func (w *FileResultWriter) Write(ctx context.Context, report *datamodels.BacktestReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	started := report.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	dateId := fmt.Sprintf("%d%02d%02d", started.Year(), started.Month(), started.Day())
	prefix := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s", dateId, report.Name))

	periods := report.Periods()
	var periodsFile string
	var err error
	switch w.fileFormat {
	case FormatCSV:
		periodsFile = prefix + "_periods.csv"
		err = writePeriodsCSV(periodsFile, periods)
	case FormatJSON:
		periodsFile = prefix + "_periods.jsonl"
		err = writePeriodsJSONL(periodsFile, periods)
	}
	if err != nil {
		return err
	}
	w.files = append(w.files, periodsFile)

	summaryFile := prefix + "_summary.json"
	summary, err := json.MarshalIndent(report.Summary(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal run summary")
	}
	if err := os.WriteFile(summaryFile, append(summary, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", summaryFile)
	}
	w.files = append(w.files, summaryFile)
	return nil
}

func (w *FileResultWriter) Close() error {
	return nil
}

func writePeriodsCSV(filename string, periods []datamodels.BacktestPeriod) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer f.Close()

	csvWriter := csv.NewWriter(f)
	if err := csvWriter.Write(csvHeaders(reflect.TypeOf(datamodels.BacktestPeriod{}))); err != nil {
		return errors.Wrap(err, "failed to write CSV headers")
	}
	for _, period := range periods {
		if err := csvWriter.Write(csvValues(reflect.ValueOf(period))); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(err, "error flushing CSV writer")
	}
	return nil
}

func writePeriodsJSONL(filename string, periods []datamodels.BacktestPeriod) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, period := range periods {
		if err := encoder.Encode(period); err != nil {
			return errors.Wrapf(err, "failed to write period %s", period.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// csvColumn names the CSV column of a struct field: embedded
// structs and fields tagged json:"-" are skipped.
func csvColumn(field reflect.StructField) (string, bool) {
	if field.Anonymous || !field.IsExported() {
		return "", false
	}
	jsonTag := field.Tag.Get("json")
	if jsonTag == "-" {
		return "", false
	}
	if name := strings.Split(jsonTag, ",")[0]; name != "" {
		return name, true
	}
	return field.Name, true
}

func csvHeaders(t reflect.Type) []string {
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		if name, ok := csvColumn(t.Field(i)); ok {
			headers = append(headers, name)
		}
	}
	return headers
}

func csvValues(v reflect.Value) []string {
	t := v.Type()
	var values []string
	for i := 0; i < v.NumField(); i++ {
		if _, ok := csvColumn(t.Field(i)); !ok {
			continue
		}
		values = append(values, formatCSVValue(v.Field(i).Interface()))
	}
	return values
}

func formatCSVValue(value any) string {
	switch val := value.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case *float64:
		if val == nil {
			return ""
		}
		return strconv.FormatFloat(*val, 'g', -1, 64)
	case datamodels.Position:
		return strconv.Itoa(int(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
