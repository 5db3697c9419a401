package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *StatisticsTestSuite) TestWriteAndReadEpisodeStats() {
	stats := []EpisodeStats{
		{
			RunID:           "run-1",
			Timestamp:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Symbol:          "005930",
			Episode:         0,
			Epsilon:         0.5,
			ExplorationBias: 0.75,
			Steps:           3,
			ExplorationRate: 1.0 / 3.0,
			BuyCount:        1,
			SellCount:       1,
			HoldCount:       1,
			InitialBalance:  1000000,
			FinalValue:      979786.51,
			CashBalance:     979786.51,
			ProfitLoss:      -0.02021349,
		},
	}

	path := filepath.Join(suite.tempDir, "stats.yaml")
	suite.Require().NoError(WriteEpisodeStats(path, stats))

	raw, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var generic []map[string]any
	suite.Require().NoError(yaml.Unmarshal(raw, &generic))
	suite.Len(generic, 1)
	suite.Equal("run-1", generic[0]["run_id"])
	suite.Equal(1, generic[0]["buy_count"])
	suite.NotContains(generic[0], "data_path")

	read, err := ReadEpisodeStats(path)
	suite.Require().NoError(err)
	suite.Equal(stats, read)
}

func (suite *StatisticsTestSuite) TestWriteEpisodeStatsInvalidPath() {
	err := WriteEpisodeStats(filepath.Join(suite.tempDir, "missing", "stats.yaml"), nil)
	suite.Error(err)
}

func (suite *StatisticsTestSuite) TestReadEpisodeStatsMissingFile() {
	_, err := ReadEpisodeStats(filepath.Join(suite.tempDir, "nope.yaml"))
	suite.Error(err)
}
