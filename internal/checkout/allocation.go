package checkout

import "github.com/shopspring/decimal"

// AllocateProportional splits amount across weights in proportion, flooring
// each share. The last positive-weight slot absorbs the rounding remainder so
// the shares always sum to exactly amount.
func AllocateProportional(amount int, weights []int) []int {
	shares := make([]int, len(weights))
	if amount <= 0 || len(weights) == 0 {
		return shares
	}

	totalWeight := 0
	lastPositive := -1
	for i, w := range weights {
		if w > 0 {
			totalWeight += w
			lastPositive = i
		}
	}
	if totalWeight <= 0 {
		return shares
	}

	amountDec := decimal.NewFromInt(int64(amount))
	totalDec := decimal.NewFromInt(int64(totalWeight))

	allocated := 0
	for i, w := range weights {
		if w <= 0 || i == lastPositive {
			continue
		}
		share := amountDec.
			Mul(decimal.NewFromInt(int64(w))).
			Div(totalDec).
			Floor().
			IntPart()
		shares[i] = int(share)
		allocated += int(share)
	}
	shares[lastPositive] = amount - allocated
	return shares
}
