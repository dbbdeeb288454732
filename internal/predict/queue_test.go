package predict

import "testing"

func TestQueueEvictsOldestWhenFull(t *testing.T) {
	queue := NewQueue(3)
	for seq := uint64(1); seq <= 3; seq++ {
		if _, evicted := queue.Push(PendingInput{Seq: seq}); evicted {
			t.Fatalf("unexpected eviction pushing seq %d", seq)
		}
	}

	evicted, ok := queue.Push(PendingInput{Seq: 4})
	if !ok {
		t.Fatalf("expected push beyond capacity to evict")
	}
	if evicted.Seq != 1 {
		t.Fatalf("expected the oldest entry evicted, got seq %d", evicted.Seq)
	}
	if got := queue.Seqs(); len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Fatalf("unexpected queue contents: %v", got)
	}
}

func TestQueueAckThroughIsCumulative(t *testing.T) {
	queue := NewQueue(8)
	for seq := uint64(1); seq <= 3; seq++ {
		queue.Push(PendingInput{Seq: seq})
	}

	if removed := queue.AckThrough(2); removed != 2 {
		t.Fatalf("expected 2 entries removed, got %d", removed)
	}
	if got := queue.Seqs(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected remaining queue {3}, got %v", got)
	}

	// Stale and duplicate acks are no-ops.
	if removed := queue.AckThrough(2); removed != 0 {
		t.Fatalf("expected duplicate ack to remove nothing, got %d", removed)
	}
	if removed := queue.AckThrough(1); removed != 0 {
		t.Fatalf("expected stale ack to remove nothing, got %d", removed)
	}
	if queue.Len() != 1 {
		t.Fatalf("expected queue length 1, got %d", queue.Len())
	}
}

func TestQueueRemoveSpecificSeq(t *testing.T) {
	queue := NewQueue(4)
	for seq := uint64(1); seq <= 4; seq++ {
		queue.Push(PendingInput{Seq: seq})
	}

	if !queue.Remove(2) {
		t.Fatalf("expected removal of seq 2")
	}
	if queue.Remove(2) {
		t.Fatalf("expected second removal to report absence")
	}
	if got := queue.Seqs(); len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 4 {
		t.Fatalf("unexpected queue contents: %v", got)
	}
}

func TestQueueWraparoundKeepsFIFOOrder(t *testing.T) {
	queue := NewQueue(3)
	for seq := uint64(1); seq <= 5; seq++ {
		queue.Push(PendingInput{Seq: seq})
	}
	if got := queue.Seqs(); len(got) != 3 || got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Fatalf("unexpected order after wraparound: %v", got)
	}

	queue.AckThrough(4)
	queue.Push(PendingInput{Seq: 6})
	if got := queue.Seqs(); len(got) != 2 || got[0] != 5 || got[1] != 6 {
		t.Fatalf("unexpected order after ack and push: %v", got)
	}
}

func TestQueueReplaceRebuilds(t *testing.T) {
	queue := NewQueue(4)
	for seq := uint64(1); seq <= 4; seq++ {
		queue.Push(PendingInput{Seq: seq})
	}

	queue.Replace([]PendingInput{{Seq: 3}, {Seq: 4}})
	if got := queue.Seqs(); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("unexpected contents after replace: %v", got)
	}

	queue.Replace(nil)
	if queue.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", queue.Len())
	}
}
