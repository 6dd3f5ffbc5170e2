package logging

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func (s *captureSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func newTestRouter(t *testing.T, cfg Config, sink Sink) *Router {
	t.Helper()
	fixed := ClockFunc(func() time.Time { return time.Unix(100, 0) })
	r := NewRouter(fixed, cfg, []NamedSink{{Name: "capture", Sink: sink}})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Close(ctx)
	})
	return r
}

func waitForEvents(t *testing.T, sink *captureSink, want int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := sink.snapshot(); len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(sink.snapshot()))
	return nil
}

func TestRouterForwardsToSink(t *testing.T) {
	sink := &captureSink{}
	r := newTestRouter(t, DefaultConfig(), sink)

	r.Publish(context.Background(), Event{Type: "test.event", Tick: 7, Severity: SeverityInfo})

	events := waitForEvents(t, sink, 1)
	if events[0].Type != "test.event" || events[0].Tick != 7 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("expected router to stamp the clock time")
	}
	if stats := r.Stats(); stats.EventsTotal == 0 {
		t.Fatalf("expected events counted, got %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityWarn
	sink := &captureSink{}
	r := newTestRouter(t, cfg, sink)

	r.Publish(context.Background(), Event{Type: "low", Severity: SeverityInfo})
	r.Publish(context.Background(), Event{Type: "high", Severity: SeverityError})

	events := waitForEvents(t, sink, 1)
	for _, event := range events {
		if event.Type == "low" {
			t.Fatalf("info event leaked past warn filter")
		}
	}
}

func TestRouterDropsUntypedEvents(t *testing.T) {
	sink := &captureSink{}
	r := newTestRouter(t, DefaultConfig(), sink)

	r.Publish(context.Background(), Event{Severity: SeverityInfo})
	r.Publish(context.Background(), Event{Type: "typed", Severity: SeverityInfo})

	events := waitForEvents(t, sink, 1)
	if events[0].Type != "typed" {
		t.Fatalf("expected only the typed event, got %+v", events[0])
	}
}

func TestRouterAttachesConfiguredFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fields = map[string]any{"instance": "test-1"}
	sink := &captureSink{}
	r := newTestRouter(t, cfg, sink)

	r.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo})

	events := waitForEvents(t, sink, 1)
	if events[0].Extra["instance"] != "test-1" {
		t.Fatalf("expected configured field attached, got %+v", events[0].Extra)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := &Metrics{}
	m.TelemetryAdd("ticks", 1)
	m.TelemetryAdd("ticks", 2)
	m.TelemetryStore("active", 9)

	if got := m.TelemetryValue("ticks"); got != 3 {
		t.Fatalf("expected ticks=3, got %d", got)
	}
	if got := m.TelemetryValue("active"); got != 9 {
		t.Fatalf("expected active=9, got %d", got)
	}
	if got := m.TelemetryValue("missing"); got != 0 {
		t.Fatalf("expected zero for missing key, got %d", got)
	}
	snapshot := m.TelemetrySnapshot()
	if snapshot["ticks"] != 3 || snapshot["active"] != 9 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}
