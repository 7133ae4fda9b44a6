package analytics

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
)

func bars(closes []float64, volumes []float64) []models.PricePoint {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Timestamp: t0.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
		if volumes != nil {
			out[i].Volume = models.Float(volumes[i])
		}
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func hasReason(r models.EvaluatorResult, want string) bool {
	for _, s := range r.Reasons {
		if s == want {
			return true
		}
	}
	return false
}

func TestFlatSeriesIsNeutralHold(t *testing.T) {
	prices := bars(constant(30, 100), constant(30, 1000))

	tech := EvaluateTechnical(prices)
	if tech.Score != 0 {
		t.Fatalf("technical score=%v reasons=%v", tech.Score, tech.Reasons)
	}

	d := DefaultPolicy().Evaluate(prices, nil, nil)
	if d.SignalType != models.SignalHold {
		t.Fatalf("type=%s", d.SignalType)
	}
	if d.ConfidenceScore != 0 || d.EnsembleScore != 0 {
		t.Fatalf("confidence=%v ensemble=%v", d.ConfidenceScore, d.EnsembleScore)
	}
	if d.TargetPrice != nil || d.StopLoss != nil {
		t.Fatalf("HOLD must not carry target/stop")
	}
	if d.RiskLevel != models.RiskLow || d.Volatility != 0 {
		t.Fatalf("risk=%s volatility=%v", d.RiskLevel, d.Volatility)
	}
	if d.CurrentPrice != 100 {
		t.Fatalf("current price=%v", d.CurrentPrice)
	}
}

func TestInsufficientHistory(t *testing.T) {
	tech := EvaluateTechnical(bars(constant(25, 100), nil))
	if tech.Score != 0 || !hasReason(tech, ReasonInsufficientData) {
		t.Fatalf("technical=%+v", tech)
	}
	oc := EvaluateOnChain([]models.OnChainSnapshot{{ActiveAddresses: models.Float(10)}})
	if oc.Score != 0 || !hasReason(oc, ReasonInsufficientOnChain) {
		t.Fatalf("onchain=%+v", oc)
	}
	st := EvaluateSentiment(nil)
	if st.Score != 0 || !hasReason(st, ReasonNoSentiment) {
		t.Fatalf("sentiment=%+v", st)
	}
}

func TestOnChainGrowthAndAccumulation(t *testing.T) {
	snaps := []models.OnChainSnapshot{
		{ActiveAddresses: models.Float(115), ExchangeInflows: models.Float(100), ExchangeOutflows: models.Float(250)},
		{ActiveAddresses: models.Float(100), ExchangeInflows: models.Float(300), ExchangeOutflows: models.Float(100)},
	}
	r := EvaluateOnChain(snaps)
	if r.Score != 1.0 {
		t.Fatalf("score=%v want 1.0", r.Score)
	}
	if !hasReason(r, ReasonActiveAddressGrowth) || !hasReason(r, ReasonAccumulation) {
		t.Fatalf("reasons=%v", r.Reasons)
	}
}

func TestOnChainDistributionAndMissingFields(t *testing.T) {
	r := EvaluateOnChain([]models.OnChainSnapshot{
		{ActiveAddresses: models.Float(100), ExchangeInflows: models.Float(500), ExchangeOutflows: models.Float(100)},
		{ActiveAddresses: models.Float(100)},
	})
	if !approx(r.Score, -0.3) || !hasReason(r, ReasonDistribution) {
		t.Fatalf("distribution=%+v", r)
	}

	r = EvaluateOnChain([]models.OnChainSnapshot{{}, {}})
	if r.Score != 0 || len(r.Reasons) != 0 {
		t.Fatalf("empty metrics=%+v", r)
	}

	// zero previous count has no defined growth
	r = EvaluateOnChain([]models.OnChainSnapshot{{ActiveAddresses: models.Float(5)}, {ActiveAddresses: models.Float(0)}})
	if r.Score != 0 {
		t.Fatalf("zero previous=%+v", r)
	}
}

func TestSentimentScenario(t *testing.T) {
	r := EvaluateSentiment([]models.SentimentSnapshot{
		{SentimentScore: models.Float(0.5), FearGreedIndex: models.Float(20)},
		{SentimentScore: models.Float(-1), FearGreedIndex: models.Float(99)},
	})
	if !approx(r.Score, 0.06) {
		t.Fatalf("score=%v want 0.06", r.Score)
	}
	if len(r.Reasons) != 2 || r.Reasons[0] != ReasonPositiveSentiment || r.Reasons[1] != ReasonExtremeFear {
		t.Fatalf("reasons=%v", r.Reasons)
	}

	r = EvaluateSentiment([]models.SentimentSnapshot{{SentimentScore: models.Float(-0.9), FearGreedIndex: models.Float(90)}})
	if !hasReason(r, ReasonNegativeSentiment) || !hasReason(r, ReasonExtremeGreed) {
		t.Fatalf("reasons=%v", r.Reasons)
	}
}

func TestTechnicalOversoldWithVolumeSpike(t *testing.T) {
	closes := make([]float64, 40)
	vols := constant(40, 1000)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	closes[39] = 120
	vols[39] = 5000

	r := EvaluateTechnical(bars(closes, vols))
	for _, want := range []string{ReasonOversold, ReasonLowerBandVolume, ReasonBelowVWMA} {
		if !hasReason(r, want) {
			t.Fatalf("missing %q in %v", want, r.Reasons)
		}
	}
	if r.Score < -1 || r.Score > 1 {
		t.Fatalf("score out of range: %v", r.Score)
	}
}

func TestTechnicalOverbought(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	closes[39] = 180

	r := EvaluateTechnical(bars(closes, constant(40, 1000)))
	for _, want := range []string{ReasonOverbought, ReasonUpperBandTouch, ReasonAboveVWMA} {
		if !hasReason(r, want) {
			t.Fatalf("missing %q in %v", want, r.Reasons)
		}
	}
}

func TestAggregateDirections(t *testing.T) {
	p := DefaultPolicy()
	closes := []float64{100, 103, 99, 102, 100}

	bull := models.EvaluatorResult{Score: 1}
	d := p.Aggregate(closes, bull, bull, bull)
	if d.SignalType != models.SignalBuy || !approx(d.ConfidenceScore, 100) {
		t.Fatalf("buy draft=%+v", d)
	}
	if *d.TargetPrice <= d.CurrentPrice || *d.StopLoss >= d.CurrentPrice {
		t.Fatalf("buy target=%v stop=%v price=%v", *d.TargetPrice, *d.StopLoss, d.CurrentPrice)
	}
	wantTarget := d.CurrentPrice * (1 + 2*d.Volatility)
	if !approx(*d.TargetPrice, wantTarget) {
		t.Fatalf("target=%v want %v", *d.TargetPrice, wantTarget)
	}

	bear := models.EvaluatorResult{Score: -1}
	d = p.Aggregate(closes, bear, bear, bear)
	if d.SignalType != models.SignalSell {
		t.Fatalf("sell draft=%+v", d)
	}
	if *d.TargetPrice >= d.CurrentPrice || *d.StopLoss <= d.CurrentPrice {
		t.Fatalf("sell target=%v stop=%v price=%v", *d.TargetPrice, *d.StopLoss, d.CurrentPrice)
	}

	// out-of-range evaluator scores are clamped before weighting
	d = p.Aggregate(closes, models.EvaluatorResult{Score: 7}, bear, bear)
	if !approx(d.EnsembleScore, 0.4-0.6) {
		t.Fatalf("ensemble=%v", d.EnsembleScore)
	}

	// exactly at the threshold stays HOLD
	d = p.Aggregate(closes, models.EvaluatorResult{}, bull, models.EvaluatorResult{})
	if d.SignalType != models.SignalHold {
		t.Fatalf("threshold draft=%+v", d)
	}
}

func TestAggregateZeroVolatilityCollapsesTargetAndStop(t *testing.T) {
	p := DefaultPolicy()
	closes := constant(30, 100)
	neutral := models.EvaluatorResult{}

	for _, tc := range []struct {
		score float64
		want  models.SignalType
	}{
		{1, models.SignalBuy},
		{-1, models.SignalSell},
	} {
		strong := models.EvaluatorResult{Score: tc.score}
		d := p.Aggregate(closes, neutral, strong, strong)
		if d.SignalType != tc.want || d.Volatility != 0 || d.RiskLevel != models.RiskLow {
			t.Fatalf("%s draft=%+v", tc.want, d)
		}
		// a flat history leaves no room between target and stop
		if d.TargetPrice == nil || d.StopLoss == nil || *d.TargetPrice != 100 || *d.StopLoss != 100 {
			t.Fatalf("%s target=%v stop=%v", tc.want, d.TargetPrice, d.StopLoss)
		}
	}
}

func TestAggregateWithoutPricesHolds(t *testing.T) {
	bull := models.EvaluatorResult{Score: 1}
	d := DefaultPolicy().Aggregate(nil, bull, bull, bull)
	if d.SignalType != models.SignalHold || d.TargetPrice != nil || d.StopLoss != nil {
		t.Fatalf("draft=%+v", d)
	}
	if d.RiskLevel != models.RiskHigh {
		t.Fatalf("default volatility should map to HIGH, got %s", d.RiskLevel)
	}
}

func TestRiskTiers(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		v    float64
		want models.RiskLevel
	}{
		{0, models.RiskLow},
		{0.0199, models.RiskLow},
		{0.02, models.RiskMedium},
		{0.0499, models.RiskMedium},
		{0.05, models.RiskHigh},
		{0.3, models.RiskHigh},
	}
	for _, tc := range cases {
		if got := p.riskLevel(tc.v); got != tc.want {
			t.Fatalf("risk(%v)=%s want %s", tc.v, got, tc.want)
		}
	}
}

func TestDraftInvariantsOnRandomSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := DefaultPolicy()
	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(60)
		closes := make([]float64, n)
		vols := make([]float64, n)
		price := 50 + rng.Float64()*100
		for i := range closes {
			price *= 1 + (rng.Float64()-0.5)*0.2
			closes[i] = price
			vols[i] = rng.Float64() * 1e6
		}
		oc := []models.OnChainSnapshot{
			{ActiveAddresses: models.Float(rng.Float64() * 1e4), ExchangeInflows: models.Float(rng.Float64()), ExchangeOutflows: models.Float(rng.Float64())},
			{ActiveAddresses: models.Float(rng.Float64() * 1e4)},
		}
		st := []models.SentimentSnapshot{{SentimentScore: models.Float(rng.Float64()*2 - 1), FearGreedIndex: models.Float(rng.Float64() * 100)}}

		d := p.Evaluate(bars(closes, vols), oc, st)
		if d.ConfidenceScore < 0 || d.ConfidenceScore > 100 || math.Abs(d.EnsembleScore) > 1 {
			t.Fatalf("iter %d: confidence=%v ensemble=%v", iter, d.ConfidenceScore, d.EnsembleScore)
		}
		switch d.SignalType {
		case models.SignalHold:
			if d.TargetPrice != nil || d.StopLoss != nil {
				t.Fatalf("iter %d: HOLD with target/stop", iter)
			}
		case models.SignalBuy:
			if d.TargetPrice == nil || d.StopLoss == nil || *d.TargetPrice < d.CurrentPrice || *d.StopLoss > d.CurrentPrice {
				t.Fatalf("iter %d: bad BUY %+v", iter, d)
			}
		case models.SignalSell:
			if d.TargetPrice == nil || d.StopLoss == nil || *d.TargetPrice > d.CurrentPrice || *d.StopLoss < d.CurrentPrice {
				t.Fatalf("iter %d: bad SELL %+v", iter, d)
			}
		}
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	bad := []func(*Policy){
		func(p *Policy) { p.TechnicalWeight = -0.1 },
		func(p *Policy) { p.SentimentWeight = 0.5 },
		func(p *Policy) { p.BuyThreshold = 0 },
		func(p *Policy) { p.SellThreshold = 0.1 },
		func(p *Policy) { p.LowVolatility = 0.06 },
		func(p *Policy) { p.StopMultiple = 0 },
	}
	for i, mutate := range bad {
		p := DefaultPolicy()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
