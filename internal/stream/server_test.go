package stream

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/physics"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server, *metrics.Collector) {
	t.Helper()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, "stream")
	s, err := New(opts, reg, collector)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, collector
}

func TestNewRejectsBadOptions(t *testing.T) {
	tests := []Options{
		{Dt: 0, StepsPerSnapshot: 1},
		{Dt: 0.01, StepsPerSnapshot: 0},
	}
	for _, opts := range tests {
		_, err := New(opts, prometheus.NewRegistry(), nil)
		if !errors.Is(err, dynamo.ErrInvalidArgument) {
			t.Errorf("New(%+v) error = %v, want ErrInvalidArgument", opts, err)
		}
	}
}

func TestHealthz(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{Dt: 0.01, StepsPerSnapshot: 1})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestWebSocketFeed(t *testing.T) {
	const stepsPer = 100
	s, ts, _ := newTestServer(t, Options{Dt: 0.01, StepsPerSnapshot: stepsPer, Rate: 0})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ref := physics.NewJovian()
	for i := 0; i < 3; i++ {
		var snap physics.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
		if snap.Step != i*stepsPer {
			t.Errorf("snapshot %d step = %d, want %d", i, snap.Step, i*stepsPer)
		}
		if snap.Energy != ref.Energy() {
			t.Errorf("snapshot %d energy = %.12f, want %.12f", i, snap.Energy, ref.Energy())
		}
		if snap.Bodies[1].Name != "jupiter" {
			t.Errorf("body 1 = %q", snap.Bodies[1].Name)
		}
		for j := 0; j < stepsPer; j++ {
			ref.Advance(0.01)
		}
	}

	if got := testutil.ToFloat64(s.snapshots); got < 3 {
		t.Errorf("snapshots_total = %v, want >= 3", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts, collector := newTestServer(t, Options{Dt: 0.01, StepsPerSnapshot: 1})
	collector.ObserveSteps(42)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"nbody_stream_clients", "nbody_steps_total 42"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
