package handler

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sara-labs/sara/internal/observe"
	"github.com/sara-labs/sara/pkg/provider/llm"
	llmmock "github.com/sara-labs/sara/pkg/provider/llm/mock"
	searchmock "github.com/sara-labs/sara/pkg/provider/search/mock"
)

// newRecordingMetrics returns a Metrics instance whose recordings can be
// read back through the ManualReader.
func newRecordingMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterTotal sums all data points of the named int64 counter. An
// unrecorded instrument counts as zero.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != name {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is not an int64 sum", name)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestChatRecordsProviderCalls(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: llm.CompletionResponse{Content: "fine"}}
	engine, _ := newTestEngine(t, provider)
	metrics, reader := newRecordingMetrics(t)
	engine.metrics = metrics

	engine.General(context.Background(), "how are you?")
	provider.CompleteErr = errors.New("model unavailable")
	engine.General(context.Background(), "and now?")

	if got := counterTotal(t, reader, "sara.provider.requests"); got != 2 {
		t.Errorf("provider requests = %d, want 2", got)
	}
	if got := counterTotal(t, reader, "sara.provider.errors"); got != 1 {
		t.Errorf("provider errors = %d, want 1", got)
	}
}

func TestRealtimeRecordsSearchFailure(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: llm.CompletionResponse{Content: "best guess"}}
	engine, _ := newTestEngine(t, provider)
	metrics, reader := newRecordingMetrics(t)
	engine.metrics = metrics

	rt, err := NewRealtime(engine, &searchmock.Provider{Err: errors.New("network down")})
	if err != nil {
		t.Fatalf("NewRealtime() error = %v", err)
	}
	rt.Handle(context.Background(), "weather today")

	// One failed search plus one successful completion.
	if got := counterTotal(t, reader, "sara.provider.requests"); got != 2 {
		t.Errorf("provider requests = %d, want 2", got)
	}
	if got := counterTotal(t, reader, "sara.provider.errors"); got != 1 {
		t.Errorf("provider errors = %d, want 1", got)
	}
}
