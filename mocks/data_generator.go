package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-rl/internal/types"
)

// DataGenerator produces synthetic single-symbol feeds for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a generator. Equal seeds yield equal feeds.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures a synthetic feed.
type GeneratorConfig struct {
	Symbol    string
	StartTime time.Time
	// Interval between bars.
	Interval time.Duration
	// Count is the number of bars.
	Count        int
	InitialPrice float64
	// Volatility is the per-bar standard deviation of the close-to-close return.
	Volatility float64
	// Trend is the total drift spread over the feed (-0.1 bearish, 0.1 bullish).
	Trend      float64
	VolumeBase float64
}

// Regime is one segment of a feed with its own drift.
type Regime struct {
	Count int
	Trend float64
}

// DefaultConfig returns a daily feed of 250 bars starting at 100.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "TEST",
		StartTime:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:     24 * time.Hour,
		Count:        250,
		InitialPrice: 100.0,
		Volatility:   0.01,
		Trend:        0.0,
		VolumeBase:   100000,
	}
}

// Generate creates a feed following geometric Brownian motion. Prices are
// rounded to 4 decimals and always positive.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	return g.GenerateRegimes(config, []Regime{{Count: config.Count, Trend: config.Trend}})
}

// GenerateRegimes concatenates segments with different drifts into one
// continuous feed, e.g. a rally followed by a sell-off.
func (g *DataGenerator) GenerateRegimes(config GeneratorConfig, regimes []Regime) []types.MarketData {
	total := 0
	for _, r := range regimes {
		total += r.Count
	}

	data := make([]types.MarketData, 0, total)
	price := config.InitialPrice
	current := config.StartTime

	for _, regime := range regimes {
		drift := 0.0
		if regime.Count > 0 {
			drift = regime.Trend / float64(regime.Count)
		}

		for i := 0; i < regime.Count; i++ {
			bar := g.nextBar(config, price, drift)
			bar.Time = current
			data = append(data, bar)

			price = bar.Close
			current = current.Add(config.Interval)
		}
	}

	return data
}

// GenerateCloses returns only the closing prices of a generated feed.
func (g *DataGenerator) GenerateCloses(config GeneratorConfig) []float64 {
	return types.Closes(g.Generate(config))
}

func (g *DataGenerator) nextBar(config GeneratorConfig, open, drift float64) types.MarketData {
	// Box-Muller
	u1 := 1 - g.rng.Float64()
	u2 := g.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	closePrice := open * (1 + config.Volatility*z + drift)
	if closePrice <= 0 {
		closePrice = open * 0.99
	}

	high := math.Max(open, closePrice) * (1 + g.rng.Float64()*config.Volatility/2)
	low := math.Min(open, closePrice) * (1 - g.rng.Float64()*config.Volatility/2)

	volume := config.VolumeBase * (0.5 + g.rng.Float64())

	return types.MarketData{
		Symbol: config.Symbol,
		Open:   roundToDecimals(open, 4),
		High:   roundToDecimals(high, 4),
		Low:    roundToDecimals(low, 4),
		Close:  roundToDecimals(closePrice, 4),
		Volume: roundToDecimals(volume, 0),
	}
}

// GenerateFeed is a shortcut for a default feed of count bars.
func GenerateFeed(symbol string, count int, seed int64) []types.MarketData {
	gen := NewDataGenerator(seed)
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = count

	return gen.Generate(config)
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
