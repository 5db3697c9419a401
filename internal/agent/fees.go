package agent

const (
	// TradingCharge is the brokerage charge rate applied to both sides.
	TradingCharge = 0.00015
	// TradingTax is the transaction tax rate applied to sells.
	TradingTax = 0.0025
)

// Fees carries the charge and tax rates of one agent. Each agent holds its own
// copy so concurrent episodes never share mutable fee state.
type Fees struct {
	Charge float64
	Tax    float64
}

// DefaultFees returns the fixed charge and tax rates.
func DefaultFees() Fees {
	return Fees{Charge: TradingCharge, Tax: TradingTax}
}

// BuyCost is the cash needed to buy units shares at price, charge included.
// The explicit conversion keeps the product from being fused with a
// following addition so settlements round identically on every platform.
func (f Fees) BuyCost(price float64, units int) float64 {
	return float64(price * (1 + f.Charge) * float64(units))
}

// BuyUnitCost is the cash needed for a single share at price.
func (f Fees) BuyUnitCost(price float64) float64 {
	return float64(price * (1 + f.Charge))
}

// SellProceeds is the cash received for selling units shares at price, after
// tax and charge.
func (f Fees) SellProceeds(price float64, units int) float64 {
	return float64(price * (1 - (f.Tax + f.Charge)) * float64(units))
}
