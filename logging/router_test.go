package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/tianzhicdev/tetris-battle-sub004/logging"
	"github.com/tianzhicdev/tetris-battle-sub004/logging/sinks"
)

func fixedClock(at time.Time) logging.Clock {
	return logging.ClockFunc(func() time.Time { return at })
}

func TestRouterDeliversToAllSinks(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	first := sinks.NewMemory()
	second := sinks.NewMemory()
	router := logging.NewRouter(
		logging.Config{Fields: map[string]any{"client": "tetris"}},
		fixedClock(now),
		[]logging.NamedSink{{Name: "a", Sink: first}, {Name: "b", Sink: second}},
	)

	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventMisprediction,
		Session:  "s-1",
		Seq:      4,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
	})
	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventNetworkConnect,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close router: %v", err)
	}

	for name, sink := range map[string]*sinks.Memory{"a": first, "b": second} {
		events := sink.Events()
		if len(events) != 2 {
			t.Fatalf("sink %s: expected 2 events, got %d", name, len(events))
		}
		if events[0].Type != logging.EventMisprediction || events[0].Seq != 4 {
			t.Fatalf("sink %s: unexpected first event %+v", name, events[0])
		}
		if !events[0].Time.Equal(now) {
			t.Fatalf("sink %s: expected the clock to stamp the event, got %v", name, events[0].Time)
		}
		if events[0].Extra["client"] != "tetris" {
			t.Fatalf("sink %s: expected shared fields merged, got %v", name, events[0].Extra)
		}
	}

	stats := router.Stats()
	if stats.EventsTotal != 2 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	sink := sinks.NewMemory()
	router := logging.NewRouter(
		logging.Config{MinimumSeverity: logging.SeverityWarn},
		nil,
		[]logging.NamedSink{{Name: "mem", Sink: sink}},
	)

	router.Publish(context.Background(), logging.Event{Type: logging.EventSessionStart, Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: logging.EventNetworkClose, Severity: logging.SeverityError})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close router: %v", err)
	}

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the error event, got %d", len(events))
	}
	if events[0].Type != logging.EventNetworkClose {
		t.Fatalf("unexpected surviving event %+v", events[0])
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	sink := sinks.NewMemory()
	router := logging.NewRouter(logging.Config{}, nil, []logging.NamedSink{{Name: "mem", Sink: sink}})

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityInfo})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close router: %v", err)
	}

	if events := sink.Events(); len(events) != 0 {
		t.Fatalf("expected untyped event discarded, got %d", len(events))
	}
}

func TestRouterPublishAfterCloseIsNoOp(t *testing.T) {
	sink := sinks.NewMemory()
	router := logging.NewRouter(logging.Config{}, nil, []logging.NamedSink{{Name: "mem", Sink: sink}})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close router: %v", err)
	}

	router.Publish(context.Background(), logging.Event{Type: logging.EventSessionStart})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if events := sink.Events(); len(events) != 0 {
		t.Fatalf("expected no events after close, got %d", len(events))
	}
}

type blockingSink struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSink) Write(logging.Event) error {
	s.entered <- struct{}{}
	<-s.release
	return nil
}

func (s *blockingSink) Close(context.Context) error { return nil }

func TestRouterDropsWhenBufferIsFull(t *testing.T) {
	sink := &blockingSink{entered: make(chan struct{}, 8), release: make(chan struct{})}
	router := logging.NewRouter(
		logging.Config{BufferSize: 1, DropWarnInterval: time.Minute},
		nil,
		[]logging.NamedSink{{Name: "slow", Sink: sink}},
	)

	// First event is picked up by the dispatcher and parks inside the sink.
	router.Publish(context.Background(), logging.Event{Type: logging.EventSessionStart})
	<-sink.entered

	// Second fills the buffer; third has nowhere to go.
	router.Publish(context.Background(), logging.Event{Type: logging.EventSessionStart})
	router.Publish(context.Background(), logging.Event{Type: logging.EventSessionStart})

	if dropped := router.Stats().DroppedTotal; dropped != 1 {
		t.Fatalf("expected 1 dropped event, got %d", dropped)
	}

	close(sink.release)
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close router: %v", err)
	}
}
