// Package apy holds the yield math: compounding of periodic returns and a
// small regression helper for APY forecasts.
package apy

// Compound combines a series of periodic percentage returns into one
// compounded rate, also as a percentage. Entries must be ordered oldest to
// newest. Nil entries are observations with no value and are skipped rather
// than counted as zero returns. Returns 0 when no entry carried a value.
//
// Compound([]{10, 10}) == 21 and Compound([]{-10, -5}) == -14.5: losses
// multiply (0.90 * 0.95), they do not add.
func Compound(returns []*float64) float64 {
	product := 1.0
	hasData := false
	for _, r := range returns {
		if r == nil {
			continue
		}
		hasData = true
		product *= 1 + *r/100
	}
	if !hasData {
		return 0.0
	}
	return (product - 1) * 100
}
