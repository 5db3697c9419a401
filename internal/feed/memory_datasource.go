package feed

import (
	"os"
	"slices"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MemoryDataSource serves records held in memory, either passed in directly
// or loaded from a YAML list of records.
type MemoryDataSource struct {
	records []types.MarketData
	symbol  string
}

// NewMemoryDataSource wraps records. A non-empty symbol filters them.
func NewMemoryDataSource(records []types.MarketData, symbol string) *MemoryDataSource {
	m := &MemoryDataSource{symbol: symbol}
	m.setRecords(records)

	return m
}

func (m *MemoryDataSource) setRecords(records []types.MarketData) {
	m.records = slices.Clone(records)
	slices.SortStableFunc(m.records, func(a, b types.MarketData) int {
		return a.Time.Compare(b.Time)
	})
}

// Initialize replaces the records with the YAML feed at path.
func (m *MemoryDataSource) Initialize(path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	if format != FormatYAML {
		return errors.Newf(errors.ErrCodeUnsupportedFormat, "memory data source reads YAML feeds, got %s", format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read feed %q", path)
	}

	var records []types.MarketData
	if err := yaml.Unmarshal(data, &records); err != nil {
		return errors.Wrapf(errors.ErrCodeFeedParseFailed, err, "failed to parse feed %q", path)
	}

	m.setRecords(records)

	return nil
}

// ReadAll implements DataSource.
func (m *MemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		for _, record := range m.records {
			if !m.matches(record, start, end) {
				continue
			}

			if !yield(record, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (m *MemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, record := range m.records {
		if m.matches(record, start, end) {
			count++
		}
	}

	return count, nil
}

// Close implements DataSource.
func (m *MemoryDataSource) Close() error {
	return nil
}

func (m *MemoryDataSource) matches(record types.MarketData, start, end optional.Option[time.Time]) bool {
	if m.symbol != "" && record.Symbol != m.symbol {
		return false
	}

	return inRange(record.Time, start, end)
}
