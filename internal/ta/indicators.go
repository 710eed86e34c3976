// Package ta holds the numeric primitives of the oscillator pipeline.
// Both functions are pure and length-preserving.
package ta

// EMASeries computes an exponential moving average seeded with the first
// input value: out[0] = values[0], then
// out[i] = alpha*values[i] + (1-alpha)*out[i-1] with alpha = 2/(period+1).
// This is the pandas ewm(adjust=False) recurrence; the seed is the raw first
// value, not an arithmetic-mean warm-up. Empty input yields nil.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RollingSum computes out[i] = sum(values[max(0,i-window+1) .. i]). The
// window shrinks at the head: the first window-1 outputs are partial sums,
// never zero-padded. Empty input yields nil.
func RollingSum(values []int64, window int) []int64 {
	if len(values) == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}
	out := make([]int64, len(values))
	var sum int64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum
	}
	return out
}
