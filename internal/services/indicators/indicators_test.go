package indicators

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestRSI(t *testing.T) {
	cases := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"rising", ramp(30, 100, 1), 100},
		{"falling", ramp(30, 100, -1), 0},
		{"flat", ramp(30, 100, 0), 50},
		{"short", ramp(10, 100, 1), 50},
		{"empty", nil, 50},
	}
	for _, tc := range cases {
		if got := RSI(tc.closes, 14); !approx(got, tc.want, 1e-9) {
			t.Fatalf("%s: RSI=%v want %v", tc.name, got, tc.want)
		}
	}

	// gains 2, losses 1 over two deltas -> RS=2 -> 66.67
	if got := RSI([]float64{10, 12, 11}, 2); !approx(got, 200.0/3.0, 1e-9) {
		t.Fatalf("RSI mixed=%v", got)
	}
}

func TestEMA(t *testing.T) {
	if got := EMA([]float64{1, 2, 3, 4, 5}, 3); !approx(got, 4, 1e-12) {
		t.Fatalf("EMA=%v want 4", got)
	}
	if got := EMA([]float64{7, 8}, 5); got != 8 {
		t.Fatalf("short EMA should return last value, got %v", got)
	}
	if got := EMA(nil, 5); got != 0 {
		t.Fatalf("empty EMA=%v", got)
	}

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	ref := talib.Ema(closes, 12)
	if got := EMA(closes, 12); !approx(got, ref[len(ref)-1], 1e-9) {
		t.Fatalf("EMA=%v talib=%v", got, ref[len(ref)-1])
	}
}

func TestEMADoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	cp := append([]float64(nil), in...)
	_ = EMA(in, 3)
	_ = MACD(in, 2, 4, 3)
	for i := range in {
		if in[i] != cp[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestMACD(t *testing.T) {
	flat := MACD(ramp(60, 100, 0), 12, 26, 9)
	if flat != (MACDResult{}) {
		t.Fatalf("flat MACD=%+v", flat)
	}

	// line has fewer than 9 values: signal collapses onto the line
	short := MACD(ramp(30, 100, 1), 12, 26, 9)
	if short.Histogram != 0 || short.Signal != short.MACD {
		t.Fatalf("short MACD=%+v", short)
	}

	up := make([]float64, 60)
	down := make([]float64, 60)
	for i := range up {
		up[i] = 100 + float64(i*i)
		down[i] = 5000 - float64(i*i)
	}
	if r := MACD(up, 12, 26, 9); r.MACD <= 0 || r.Histogram <= 0 {
		t.Fatalf("accelerating uptrend MACD=%+v", r)
	}
	if r := MACD(down, 12, 26, 9); r.MACD >= 0 || r.Histogram >= 0 {
		t.Fatalf("accelerating downtrend MACD=%+v", r)
	}
	if r := MACD(up, 12, 26, 9); !approx(r.Histogram, r.MACD-r.Signal, 1e-12) {
		t.Fatalf("histogram mismatch %+v", r)
	}
}

func TestBollingerBands(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + 3*math.Cos(float64(i)/3) + float64(i)*0.1
	}
	b := BollingerBands(closes, 20, 2)

	sma := talib.Sma(closes, 20)
	if !approx(b.Middle, sma[len(sma)-1], 1e-9) {
		t.Fatalf("middle=%v sma=%v", b.Middle, sma[len(sma)-1])
	}
	up, mid, lo := talib.BBands(closes, 20, 2, 2, talib.SMA)
	n := len(closes) - 1
	if !approx(b.Upper, up[n], 1e-6) || !approx(b.Middle, mid[n], 1e-9) || !approx(b.Lower, lo[n], 1e-6) {
		t.Fatalf("bands=%+v talib=(%v,%v,%v)", b, up[n], mid[n], lo[n])
	}
	if sd := talib.StdDev(closes, 20, 1); !approx(b.Width(), 4*sd[n], 1e-6) {
		t.Fatalf("width=%v", b.Width())
	}

	flat := BollingerBands(ramp(25, 10, 0), 20, 2)
	if flat.Upper != 10 || flat.Lower != 10 {
		t.Fatalf("flat bands=%+v", flat)
	}
	if (BollingerBands(nil, 20, 2) != Bands{}) {
		t.Fatalf("empty bands should be zero")
	}
	short := BollingerBands([]float64{1, 3}, 20, 2)
	if short.Middle != 2 || !approx(short.Upper, 4, 1e-12) {
		t.Fatalf("short bands=%+v", short)
	}
}

func TestVWMA(t *testing.T) {
	closes := ramp(30, 10, 0.5)
	vols := ramp(30, 1000, 0)
	sma := talib.Sma(closes, 20)
	if got := VWMA(closes, vols, 20); !approx(got, sma[len(sma)-1], 1e-9) {
		t.Fatalf("uniform VWMA=%v sma=%v", got, sma[len(sma)-1])
	}

	if got := VWMA(closes, make([]float64, 30), 20); got != closes[29] {
		t.Fatalf("zero-volume VWMA=%v", got)
	}
	if got := VWMA([]float64{10, 20}, []float64{1, 3}, 20); !approx(got, 17.5, 1e-12) {
		t.Fatalf("weighted VWMA=%v", got)
	}
}

func TestVolatility(t *testing.T) {
	if got := Volatility([]float64{100}); got != DefaultVolatility {
		t.Fatalf("short volatility=%v", got)
	}
	if got := Volatility(ramp(10, 5, 0)); got != 0 {
		t.Fatalf("flat volatility=%v", got)
	}
	if got := Volatility([]float64{100, 110, 99}); !approx(got, 0.1, 1e-12) {
		t.Fatalf("volatility=%v want 0.1", got)
	}
	rets := SimpleReturns([]float64{0, 10, 20})
	if rets[0] != 0 || rets[1] != 1 {
		t.Fatalf("returns=%v", rets)
	}
}

func TestMovingAveragesOnShortAndLongSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 120 + 8*math.Sin(float64(i)/4) + float64(i)*0.3
	}

	sma := talib.Sma(closes, 20)
	if got := SMA(closes, 20); !approx(got, sma[29], 1e-9) {
		t.Fatalf("SMA=%v talib=%v", got, sma[29])
	}
	// fewer values than the period average the whole window
	if got := SMA([]float64{2, 4, 9}, 10); !approx(got, 5, 1e-12) {
		t.Fatalf("short SMA=%v want 5", got)
	}
	if got := SMA(nil, 10); got != 0 {
		t.Fatalf("empty SMA=%v", got)
	}

	if got := EMA(closes[:4], 9); got != closes[3] {
		t.Fatalf("short EMA=%v want %v", got, closes[3])
	}

	fast, slow := talib.Ema(closes, 12), talib.Ema(closes, 26)
	if r := MACD(closes, 12, 26, 9); !approx(r.MACD, fast[29]-slow[29], 1e-9) {
		t.Fatalf("MACD line=%v want %v", r.MACD, fast[29]-slow[29])
	}
}

func TestVolatilityMatchesPopulationStdDev(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 108}
	rets := SimpleReturns(closes)
	var m float64
	for _, r := range rets {
		m += r
	}
	m /= float64(len(rets))
	var sq float64
	for _, r := range rets {
		sq += (r - m) * (r - m)
	}
	want := math.Sqrt(sq / float64(len(rets)))
	if got := Volatility(closes); !approx(got, want, 1e-9) {
		t.Fatalf("volatility=%v want %v", got, want)
	}
}
