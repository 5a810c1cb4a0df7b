package otel

import (
	"context"
	"testing"

	"github.com/padronhq/padron"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	snapshot padron.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() padron.MetricsSnapshot {
	return f.snapshot
}

func (f *fakeSource) AuditDropped() uint64 {
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("padron-test")

	src := &fakeSource{
		snapshot: padron.MetricsSnapshot{
			Counters: map[padron.MetricID]uint64{
				padron.MetricLoginSuccess: 3,
			},
			Histograms: map[padron.MetricID][]uint64{
				padron.MetricAuthenticateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	values := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, p := range data.DataPoints {
					values[m.Name] = p.Value
				}
			case metricdata.Gauge[int64]:
				for _, p := range data.DataPoints {
					values[m.Name] = p.Value
				}
			}
		}
	}

	if got := values["padron_login_success_total"]; got != 3 {
		t.Fatalf("login success = %d, want 3", got)
	}
	if got := values["padron_authenticate_latency_seconds_count"]; got != 8 {
		t.Fatalf("latency count = %d, want 8", got)
	}
	if got := values["padron_authenticate_latency_seconds_bucket_le_0_01"]; got != 2 {
		t.Fatalf("cumulative second bucket = %d, want 2", got)
	}
	if got := values["padron_audit_dropped_total"]; got != 1 {
		t.Fatalf("audit dropped = %d, want 1", got)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("padron-test")

	if _, err := NewExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("err = %v, want ErrNilMeter", err)
	}
	if _, err := NewExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("err = %v, want ErrNilSource", err)
	}
}
