package feeds

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

type CsvFeedTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	dir    string
}

func TestCsvFeedSuite(t *testing.T) {
	suite.Run(t, new(CsvFeedTestSuite))
}

func (s *CsvFeedTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.dir = s.T().TempDir()
}

func (s *CsvFeedTestSuite) TearDownTest() {
	s.cancel()
}

func (s *CsvFeedTestSuite) writeFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *CsvFeedTestSuite) TestLoadUnixTimestamps() {
	path := s.writeFile("KO.csv", "timestamp,price\n100,50.5\n160,51\n220,50.25\n")
	feed, err := NewCsvFeedBuilder(path).WithHasHeader(true).Build()
	s.Require().NoError(err)

	series, err := feed.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("KO", series.Name)
	s.Equal([]float64{50.5, 51, 50.25}, series.Values)
	s.Equal(time.Unix(160, 0).UTC(), series.Index[1])
}

func (s *CsvFeedTestSuite) TestLoadDateLayoutAndColumns() {
	path := s.writeFile("pep.csv", "PEP,2024-01-02,170.1\nPEP,2024-01-03,171.4\n")
	feed, err := NewCsvFeedBuilder(path).
		WithName("PEP").
		WithColumns(1, 2).
		WithTimestampFormat("2006-01-02").
		Build()
	s.Require().NoError(err)

	series, err := feed.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("PEP", series.Name)
	s.Equal([]float64{170.1, 171.4}, series.Values)
	s.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), series.Index[1])
}

func (s *CsvFeedTestSuite) TestLoadFiltersStartAndEnd() {
	path := s.writeFile("x.csv", "1,10\n2,11\n3,12\n4,13\n")
	feed, err := NewCsvFeedBuilder(path).
		WithStartTime(time.Unix(2, 0)).
		WithEndTime(time.Unix(3, 0)).
		Build()
	s.Require().NoError(err)

	series, err := feed.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal([]float64{11, 12}, series.Values)
}

func (s *CsvFeedTestSuite) TestLoadRejectsNonIncreasingTimestamps() {
	path := s.writeFile("x.csv", "1,10\n3,11\n3,12\n")
	feed, err := NewCsvFeedBuilder(path).Build()
	s.Require().NoError(err)

	_, err = feed.Load(s.ctx)
	s.True(errors.Is(err, errors.ErrValidation), "got %v", err)
}

func (s *CsvFeedTestSuite) TestLoadRejectsBadRows() {
	for name, content := range map[string]string{
		"price.csv":     "1,abc\n",
		"timestamp.csv": "yesterday,10\n",
		"short.csv":     "1\n",
		"nan.csv":       "1,NaN\n",
	} {
		feed, err := NewCsvFeedBuilder(s.writeFile(name, content)).Build()
		s.Require().NoError(err)
		_, err = feed.Load(s.ctx)
		s.True(errors.Is(err, errors.ErrValidation), "%s: got %v", name, err)
	}
}

func (s *CsvFeedTestSuite) TestBuildValidation() {
	_, err := NewCsvFeedBuilder("").Build()
	s.Error(err)

	_, err = NewCsvFeedBuilder("x.csv").WithColumns(1, 1).Build()
	s.Error(err)

	_, err = NewCsvFeedBuilder("x.csv").WithStartTime(time.Unix(10, 0)).WithEndTime(time.Unix(5, 0)).Build()
	s.Error(err)
}

func (s *CsvFeedTestSuite) TestMissingFile() {
	feed, err := NewCsvFeedBuilder(filepath.Join(s.dir, "missing.csv")).Build()
	s.Require().NoError(err)
	_, err = feed.Load(s.ctx)
	s.True(errors.Is(err, os.ErrNotExist))
}

func (s *CsvFeedTestSuite) TestLoadAlignedPair() {
	x := s.writeFile("x.csv", "1,10\n2,11\n3,12\n")
	y := s.writeFile("y.csv", "1,5\n2,6\n3,7\n")
	xFeed, err := NewPriceFeedFromConfig(datamodels.CsvFeedConfig{FilePath: x, RelationName: "X", PriceColumn: 1})
	s.Require().NoError(err)
	yFeed, err := NewPriceFeedFromConfig(datamodels.CsvFeedConfig{FilePath: y, RelationName: "Y", PriceColumn: 1})
	s.Require().NoError(err)

	px, py, err := LoadAlignedPair(s.ctx, xFeed, yFeed)
	s.Require().NoError(err)
	s.Equal("X", px.Name)
	s.Equal("Y", py.Name)
	s.True(px.IsAlignedWith(py))
}

func (s *CsvFeedTestSuite) TestLoadAlignedPairRejectsMisalignedFiles() {
	x := s.writeFile("x.csv", "1,10\n2,11\n3,12\n")
	y := s.writeFile("y.csv", "1,5\n2,6\n4,7\n")
	xFeed, err := NewCsvFeedBuilder(x).Build()
	s.Require().NoError(err)
	yFeed, err := NewCsvFeedBuilder(y).Build()
	s.Require().NoError(err)

	_, _, err = LoadAlignedPair(s.ctx, xFeed, yFeed)
	s.True(errors.Is(err, errors.ErrMisaligned))
}

func (s *CsvFeedTestSuite) TestConfigTimeWindow() {
	path := s.writeFile("x.csv", "date,close\n2024-01-01,1\n2024-01-02,2\n2024-01-03,3\n")
	feed, err := NewPriceFeedFromConfig(datamodels.CsvFeedConfig{
		FilePath:        path,
		HasHeader:       true,
		PriceColumn:     1,
		TimestampFormat: "2006-01-02",
		StartTime:       "2024-01-02",
	})
	s.Require().NoError(err)

	series, err := feed.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal([]float64{2, 3}, series.Values)

	_, err = NewPriceFeedFromConfig(datamodels.CsvFeedConfig{FilePath: path, PriceColumn: 1, EndTime: "soon"})
	s.True(errors.Is(err, errors.ErrValidation))
}
