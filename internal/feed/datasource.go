// Package feed loads market records and turns them into the ordered
// sequence a MarketObserver walks.
package feed

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
)

// Format is the on-disk encoding of a feed file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
)

// DataSource is a readable market feed.
type DataSource interface {
	// Initialize points the source at the feed file at path.
	Initialize(path string) error
	// ReadAll yields records with start <= time <= end in ascending time order.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// Count returns the number of records ReadAll would yield for the same bounds.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources held by the source.
	Close() error
}

// DetectFormat infers the feed format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported feed file %q, expected .parquet, .csv or .yaml", path)
	}
}

func inRange(t time.Time, start, end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
