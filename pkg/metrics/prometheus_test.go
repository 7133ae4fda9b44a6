package metrics

import (
	"testing"

	"FinSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordSignal("BTC", models.SignalBuy, "3D", 64)
	r.RecordSignal("BTC", models.SignalBuy, "3D", 71)
	r.RecordError("price_history")
	r.RecordPublished("kafka")
	r.RecordLatency("generate_signal", 0.12)

	if got := testutil.ToFloat64(r.signalsTotal.WithLabelValues("BTC", "BUY")); got != 2 {
		t.Fatalf("signals=%v", got)
	}
	if got := testutil.ToFloat64(r.confidence.WithLabelValues("BTC", "3D")); got != 71 {
		t.Fatalf("confidence=%v", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("price_history")); got != 1 {
		t.Fatalf("errors=%v", got)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("latency series=%d", n)
	}
}
