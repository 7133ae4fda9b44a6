package indicators

// VWMA computes the volume-weighted moving average over the trailing period
// bars. volumes is aligned with closes by index; missing entries count as zero
// volume. When the window carries no volume the newest close is returned.
func VWMA(closes, volumes []float64, period int) float64 {
	if len(closes) == 0 {
		return 0
	}
	start := 0
	if period > 0 && len(closes) > period {
		start = len(closes) - period
	}

	var pv, v float64
	for i := start; i < len(closes); i++ {
		if i >= len(volumes) {
			continue
		}
		pv += closes[i] * volumes[i]
		v += volumes[i]
	}
	if v == 0 {
		return closes[len(closes)-1]
	}
	return pv / v
}
