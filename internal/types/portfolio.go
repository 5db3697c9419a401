package types

// PortfolioState is a read-only snapshot of an agent's cash/stock portfolio.
type PortfolioState struct {
	// CashBalance is the uninvested cash. Never negative.
	CashBalance float64 `yaml:"cash_balance" json:"cash_balance"`
	// StockCount is the number of shares held. Never negative.
	StockCount int `yaml:"stock_count" json:"stock_count"`
	// PortfolioValue is CashBalance + StockCount * price as of the last settlement.
	PortfolioValue float64 `yaml:"portfolio_value" json:"portfolio_value"`
	// InitialBalance is the episode's starting cash.
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance"`
	// BasePortfolioValue is the portfolio value at the last delayed reward checkpoint.
	BasePortfolioValue float64 `yaml:"base_portfolio_value" json:"base_portfolio_value"`
	// ProfitLoss is (PortfolioValue - InitialBalance) / InitialBalance.
	ProfitLoss float64 `yaml:"profit_loss" json:"profit_loss"`
	// BaseProfitLoss is (PortfolioValue - BasePortfolioValue) / BasePortfolioValue
	// as computed before the checkpoint moved.
	BaseProfitLoss float64 `yaml:"base_profit_loss" json:"base_profit_loss"`
	BuyCount       int     `yaml:"buy_count" json:"buy_count"`
	SellCount      int     `yaml:"sell_count" json:"sell_count"`
	HoldCount      int     `yaml:"hold_count" json:"hold_count"`
}

// StateVector is the agent's contribution to the learner's observation.
type StateVector struct {
	// StockHoldingRatio is the held stock count over the maximum count the
	// portfolio value could buy at the current price.
	StockHoldingRatio float64 `yaml:"stock_holding_ratio" json:"stock_holding_ratio"`
	// PortfolioValueRatio is the portfolio value relative to the last checkpoint.
	PortfolioValueRatio float64 `yaml:"portfolio_value_ratio" json:"portfolio_value_ratio"`
}

// StateDim is the number of values in a StateVector.
const StateDim = 2

// Slice returns the state vector as an ordered slice.
func (s StateVector) Slice() []float64 {
	return []float64{s.StockHoldingRatio, s.PortfolioValueRatio}
}

// Decision is the outcome of action selection.
type Decision struct {
	Action      Action  `yaml:"action" json:"action"`
	Confidence  float64 `yaml:"confidence" json:"confidence"`
	Exploration bool    `yaml:"exploration" json:"exploration"`
}

// Reward is returned by every settlement.
type Reward struct {
	// Immediate is the profit/loss ratio relative to the initial balance.
	Immediate float64 `yaml:"immediate" json:"immediate"`
	// Delayed equals Immediate when the drift since the last checkpoint crossed
	// the threshold, and zero otherwise.
	Delayed float64 `yaml:"delayed" json:"delayed"`
}
