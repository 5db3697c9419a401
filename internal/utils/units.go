package utils

import "math"

// MaxAffordableUnits returns how many whole units costing unitCost each fit in
// balance, capped at limit. Non-positive balances or costs afford nothing.
// The result satisfies float64(unitCost*float64(units)) <= balance, the same
// product a settlement debits.
func MaxAffordableUnits(balance float64, unitCost float64, limit int) int {
	if unitCost <= 0 || balance <= 0 || math.IsNaN(balance) || math.IsNaN(unitCost) {
		return 0
	}

	units := limit
	if quotient := math.Trunc(balance / unitCost); quotient < float64(limit) {
		units = int(quotient)
	}

	// The quotient can round up to the next whole unit.
	for units > 0 && float64(unitCost*float64(units)) > balance {
		units--
	}

	return units
}

// ClampInt bounds v to [lo, hi]. When lo > hi the lower bound wins.
func ClampInt(v, lo, hi int) int {
	return max(min(v, hi), lo)
}

// ScaleWithin truncates fraction*span toward zero and bounds the result to
// [0, span]. NaN yields 0.
func ScaleWithin(fraction float64, span int) int {
	scaled := fraction * float64(span)

	switch {
	case math.IsNaN(scaled), scaled <= 0:
		return 0
	case scaled >= float64(span):
		return span
	default:
		return int(math.Trunc(scaled))
	}
}
