package feed

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
)

// LoadSequence drains ds into the ordered single-symbol sequence an observer
// walks. It fails on an empty feed, on records out of time order and on
// feeds mixing several symbols. An empty range is detected with Count before
// any record is read.
func LoadSequence(ds DataSource, start, end optional.Option[time.Time]) ([]types.MarketData, error) {
	if ds == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is nil")
	}

	count, err := ds.Count(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedLoadFailed, "failed to count feed records", err)
	}

	if count == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "feed has no records in the requested range")
	}

	sequence := make([]types.MarketData, 0, count)

	for record, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFeedLoadFailed, "failed to read feed", err)
		}

		if n := len(sequence); n > 0 {
			previous := sequence[n-1]
			if record.Time.Before(previous.Time) {
				return nil, errors.Newf(errors.ErrCodeFeedParseFailed,
					"record at %s precedes previous record at %s", record.Time, previous.Time)
			}

			if record.Symbol != previous.Symbol {
				return nil, errors.Newf(errors.ErrCodeInvalidParameter,
					"feed mixes symbols %q and %q, set a symbol filter", previous.Symbol, record.Symbol)
			}
		}

		sequence = append(sequence, record)
	}

	if len(sequence) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "feed has no records in the requested range")
	}

	return sequence, nil
}
