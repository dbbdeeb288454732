package telemetry

import (
	"sync"
	"testing"
)

func TestCountersRead(t *testing.T) {
	counters := NewCounters()
	counters.RecordPrediction()
	counters.RecordPrediction()
	counters.RecordMisprediction()
	counters.RecordRejection()
	counters.RecordEviction()
	counters.RecordReplayDrop()
	counters.RecordAck(3)
	counters.RecordAck(0)
	counters.RecordAck(-1)

	snapshot := counters.Read()
	if snapshot.Predictions != 2 {
		t.Fatalf("expected 2 predictions, got %d", snapshot.Predictions)
	}
	if snapshot.Mispredictions != 1 || snapshot.Rejections != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.Evictions != 1 || snapshot.ReplayDrops != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.Acked != 3 {
		t.Fatalf("expected 3 acked, got %d", snapshot.Acked)
	}
}

func TestCountersNilReceiver(t *testing.T) {
	var counters *Counters
	counters.RecordPrediction()
	counters.RecordAck(5)
	if snapshot := counters.Read(); snapshot != (Snapshot{}) {
		t.Fatalf("expected zero snapshot from nil counters, got %+v", snapshot)
	}
}

func TestCountersConcurrentUse(t *testing.T) {
	counters := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				counters.RecordPrediction()
			}
		}()
	}
	wg.Wait()
	if snapshot := counters.Read(); snapshot.Predictions != 800 {
		t.Fatalf("expected 800 predictions, got %d", snapshot.Predictions)
	}
}
