package observe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

// InitProvider is the only place the global meter provider is replaced.
// Without it every instrument binds to the no-op provider and the Prometheus
// scrape endpoint stays empty, so this test exercises the full bridge: global
// provider, instrument, promhttp scrape.
func TestInitProviderExportsToPrometheus(t *testing.T) {
	ctx := context.Background()

	shutdown, err := InitProvider(ctx, ProviderConfig{ServiceName: "sara-test"})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() {
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordTask(ctx, "general", "ok", 0.1)
	m.QueryDuration.Record(ctx, 0.5)

	ts := httptest.NewServer(promhttp.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read scrape body: %v", err)
	}

	for _, series := range []string{"sara_tasks_dispatched", "sara_query_duration"} {
		if !strings.Contains(string(body), series) {
			t.Errorf("scrape output is missing %q", series)
		}
	}
}
