// Package observer walks a market feed one record at a time.
package observer

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/types"
)

// MarketObserver owns an ordered sequence of market records and a cursor.
// It is not safe for concurrent use; each episode owns its own observer.
type MarketObserver struct {
	sequence []types.MarketData
	cursor   int
	current  optional.Option[types.MarketData]
}

// NewMarketObserver creates an observer positioned before the first record.
// The sequence may be nil and assigned later with SetSequence.
func NewMarketObserver(sequence []types.MarketData) *MarketObserver {
	return &MarketObserver{
		sequence: sequence,
		cursor:   -1,
		current:  optional.None[types.MarketData](),
	}
}

// Observe advances to the next record and returns it. Once the sequence is
// exhausted it returns None and leaves the observer unchanged.
func (o *MarketObserver) Observe() optional.Option[types.MarketData] {
	if o.cursor+1 >= len(o.sequence) {
		return optional.None[types.MarketData]()
	}

	o.cursor++
	o.current = optional.Some(o.sequence[o.cursor])

	return o.current
}

// CurrentPrice returns the closing price of the current record, or None
// before the first successful Observe.
func (o *MarketObserver) CurrentPrice() optional.Option[float64] {
	if o.current.IsNone() {
		return optional.None[float64]()
	}

	return optional.Some(o.current.Unwrap().Close)
}

// Current returns the current record, if any.
func (o *MarketObserver) Current() optional.Option[types.MarketData] {
	return o.current
}

// Reset returns to the state before the first observation.
func (o *MarketObserver) Reset() {
	o.cursor = -1
	o.current = optional.None[types.MarketData]()
}

// SetSequence replaces the backing sequence. The cursor is left alone; call
// Reset to restart from the beginning.
func (o *MarketObserver) SetSequence(sequence []types.MarketData) {
	o.sequence = sequence
}

// Cursor returns the index of the current record, -1 before the first observation.
func (o *MarketObserver) Cursor() int {
	return o.cursor
}

// Len returns the length of the backing sequence.
func (o *MarketObserver) Len() int {
	return len(o.sequence)
}

// History returns a copy of up to n records ending at the cursor, oldest first.
func (o *MarketObserver) History(n int) []types.MarketData {
	if o.cursor < 0 || n <= 0 {
		return nil
	}

	end := o.cursor + 1
	if end > len(o.sequence) {
		end = len(o.sequence)
	}

	start := end - n
	if start < 0 {
		start = 0
	}

	history := make([]types.MarketData, end-start)
	copy(history, o.sequence[start:end])

	return history
}
