package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

func TestRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	stats := synth.RunStats{
		Ticks:    100,
		Accepted: 60,
		Skipped:  40,
		Derived: map[signal.Source]int{
			signal.SourceMultipath: 180,
			signal.SourceNoise:     12,
		},
		Elapsed: 3 * time.Millisecond,
	}
	collector.RecordRun("Orlan-10", stats)
	collector.RecordRun("Orlan-10", stats)

	testCases := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{name: "runs", collector: collector.Runs.WithLabelValues("Orlan-10"), want: 2},
		{name: "ticks", collector: collector.Ticks.WithLabelValues("Orlan-10"), want: 200},
		{name: "accepted", collector: collector.Accepted.WithLabelValues("Orlan-10"), want: 120},
		{name: "skipped", collector: collector.Skipped.WithLabelValues("Orlan-10"), want: 80},
		{name: "multipath", collector: collector.Derived.WithLabelValues("Orlan-10", "multipath"), want: 360},
		{name: "noise", collector: collector.Derived.WithLabelValues("Orlan-10", "noise"), want: 24},
		{name: "jamming", collector: collector.Derived.WithLabelValues("Orlan-10", "jamming"), want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tc.collector); got != tc.want {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		})
	}

	if count := histogramSampleCount(t, reg, namespace+"_run_duration_seconds"); count != 2 {
		t.Errorf("run_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestGeneratorDrivesCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	var r synth.Recorder = collector
	r.RecordRun("Lancet-3", synth.RunStats{Ticks: 10, Accepted: 10})

	if got := testutil.ToFloat64(collector.Accepted.WithLabelValues("Lancet-3")); got != 10 {
		t.Errorf("accepted = %v, want 10", got)
	}
}

func TestViewerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.FrameRendered()
	collector.FrameRendered()
	collector.SetPaused(true)

	if got := testutil.ToFloat64(collector.Frames); got != 2 {
		t.Errorf("frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Paused); got != 1 {
		t.Errorf("paused = %v, want 1", got)
	}

	collector.SetPaused(false)
	if got := testutil.ToFloat64(collector.Paused); got != 0 {
		t.Errorf("paused = %v, want 0", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordRun("x", synth.RunStats{})
	c.FrameRendered()
	c.SetPaused(true)
}

func TestNewCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	first.Frames.Inc()
	if got := testutil.ToFloat64(second.Frames); got != 1 {
		t.Errorf("Expected shared counter, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	collector.RecordRun("ZALA-421-16E", synth.RunStats{Ticks: 5, Accepted: 5})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"drone_synth_runs_total",
		"drone_synth_ticks_total",
		"drone_synth_samples_accepted_total",
		"drone_synth_run_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, `drone="ZALA-421-16E"`) {
		t.Errorf("expected drone label in /metrics output")
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	var count uint64
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.Metric {
			count += m.GetHistogram().GetSampleCount()
		}
	}
	return count
}
