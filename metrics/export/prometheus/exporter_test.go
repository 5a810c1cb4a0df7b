package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/padronhq/padron"
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

func TestRenderCountersAndHistogram(t *testing.T) {
	src := &fakeSource{
		snapshot: padron.MetricsSnapshot{
			Counters: map[padron.MetricID]uint64{
				padron.MetricLoginSuccess:       3,
				padron.MetricMaintenanceBlocked: 7,
			},
			Histograms: map[padron.MetricID][]uint64{
				padron.MetricAuthenticateLatency: {2, 1, 0, 0, 0, 0, 0, 1},
			},
		},
		dropped: 5,
	}

	out := NewExporterFromSource(src).Render()

	for _, want := range []string{
		"# TYPE padron_login_success_total counter",
		"padron_login_success_total 3",
		"padron_maintenance_blocked_total 7",
		"# TYPE padron_authenticate_latency_seconds histogram",
		`padron_authenticate_latency_seconds_bucket{le="0.005"} 2`,
		`padron_authenticate_latency_seconds_bucket{le="0.01"} 3`,
		`padron_authenticate_latency_seconds_bucket{le="+Inf"} 4`,
		"padron_authenticate_latency_seconds_count 4",
		"padron_audit_dropped_total 5",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	src := &fakeSource{snapshot: padron.MetricsSnapshot{
		Counters:   map[padron.MetricID]uint64{},
		Histograms: map[padron.MetricID][]uint64{},
	}}

	if out := NewExporterFromSource(src).Render(); out != "" {
		t.Fatalf("empty source must render nothing, got:\n%s", out)
	}
}

func TestHandlerContentType(t *testing.T) {
	src := &fakeSource{
		snapshot: padron.MetricsSnapshot{
			Counters: map[padron.MetricID]uint64{padron.MetricLoginSuccess: 1},
		},
	}

	rec := httptest.NewRecorder()
	NewExporterFromSource(src).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "padron_login_success_total 1") {
		t.Fatalf("body:\n%s", rec.Body.String())
	}
}
