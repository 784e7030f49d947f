package infrastructure

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestSystemMetricsCollect(t *testing.T) {
	meter := otel.Meter("system-metrics-test")

	collector, err := NewSystemMetricsCollector(meter, time.Minute)
	if err != nil {
		t.Fatalf("NewSystemMetricsCollector: %v", err)
	}

	stats := collector.GetCurrentStats(context.Background())
	if stats == nil {
		t.Fatal("expected stats, got nil")
	}

	if stats.GoRoutines <= 0 {
		t.Errorf("expected positive goroutine count, got %d", stats.GoRoutines)
	}
	if stats.MemorySystem <= 0 {
		t.Errorf("expected positive system memory, got %d", stats.MemorySystem)
	}
	if stats.CPUCount <= 0 {
		t.Errorf("expected positive CPU count, got %d", stats.CPUCount)
	}
	if stats.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	formatted := stats.FormatStats()
	for _, key := range []string{"runtime", "system", "timestamp"} {
		if _, ok := formatted[key]; !ok {
			t.Errorf("FormatStats missing %q section", key)
		}
	}
	runtimeSection, ok := formatted["runtime"].(map[string]interface{})
	if !ok {
		t.Fatal("runtime section has wrong type")
	}
	if _, ok := runtimeSection["goroutines"]; !ok {
		t.Error("runtime section missing goroutines")
	}
}

func TestSystemMetricsCollectorStartStop(t *testing.T) {
	meter := otel.Meter("system-metrics-test")

	collector, err := NewSystemMetricsCollector(meter, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSystemMetricsCollector: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	collector.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestSystemMetricsCollectorDefaultInterval(t *testing.T) {
	meter := otel.Meter("system-metrics-test")

	collector, err := NewSystemMetricsCollector(meter, 0)
	if err != nil {
		t.Fatalf("NewSystemMetricsCollector: %v", err)
	}
	if collector.interval != 30*time.Second {
		t.Errorf("expected 30s default interval, got %v", collector.interval)
	}
}
