package indicator

import "math"

// WMA computes the linearly weighted moving average: the most recent close
// in each window carries weight `period`, the oldest weight 1.
// The first period-1 entries are NaN.
func WMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) < period {
		return out
	}

	denom := float64(period*(period+1)) / 2
	for i := period - 1; i < len(closes); i++ {
		var sum float64
		for j := 0; j < period; j++ {
			sum += closes[i-period+1+j] * float64(j+1)
		}
		out[i] = sum / denom
	}
	return out
}

// RollingStdDev computes the rolling sample standard deviation (ddof=1)
// over `period`-wide windows. The first period-1 entries are NaN.
func RollingStdDev(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) < period || period < 2 {
		return out
	}

	for i := period - 1; i < len(closes); i++ {
		var mean float64
		for j := i - period + 1; j <= i; j++ {
			mean += closes[j]
		}
		mean /= float64(period)

		var sq float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(period-1))
	}
	return out
}
