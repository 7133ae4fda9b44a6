package indicators

import "github.com/markcheno/go-talib"

// Bands are Bollinger Bands at the newest bar.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Width is upper minus lower.
func (b Bands) Width() float64 { return b.Upper - b.Lower }

// BollingerBands computes the bands over the trailing period closes: the middle
// band is their simple mean, the half-width is stdDevMultiplier times their
// population standard deviation.
func BollingerBands(closes []float64, period int, stdDevMultiplier float64) Bands {
	w := trailing(closes, period)
	if len(w) == 0 {
		return Bands{}
	}
	up, mid, lo := talib.BBands(w, len(w), stdDevMultiplier, stdDevMultiplier, talib.SMA)
	return Bands{Upper: last(up), Middle: last(mid), Lower: last(lo)}
}
