package predict

import (
	"time"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
)

// PendingInput records a locally-applied input the server has not yet
// confirmed, together with the state predicted immediately after it.
type PendingInput struct {
	Seq       uint64
	Action    sim.Action
	Predicted sim.GameState
	IssuedAt  time.Time
}

// Queue stores unconfirmed inputs in a fixed-size ring, ordered by ascending
// sequence number. Inserting into a full queue evicts the oldest entry; that
// is backpressure, not an error. The queue is not safe for concurrent use —
// the owning session serializes all access.
type Queue struct {
	data  []PendingInput
	head  int
	count int
}

// NewQueue constructs a ring with the provided capacity.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{data: make([]PendingInput, capacity)}
}

// Capacity reports the maximum number of entries the queue can hold.
func (q *Queue) Capacity() int {
	if q == nil {
		return 0
	}
	return len(q.data)
}

// Len reports the number of pending entries.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return q.count
}

// Push appends a record, evicting the oldest entry when the ring is full.
// It returns the evicted record when an eviction occurred.
func (q *Queue) Push(record PendingInput) (PendingInput, bool) {
	var evicted PendingInput
	var didEvict bool
	if q.count == len(q.data) {
		evicted, didEvict = q.evictOldest()
	}
	tail := (q.head + q.count) % len(q.data)
	q.data[tail] = record
	q.count++
	return evicted, didEvict
}

// evictOldest removes the lowest-sequence entry.
func (q *Queue) evictOldest() (PendingInput, bool) {
	if q.count == 0 {
		return PendingInput{}, false
	}
	oldest := q.data[q.head]
	q.data[q.head] = PendingInput{}
	q.head = (q.head + 1) % len(q.data)
	q.count--
	return oldest, true
}

// AckThrough removes every entry with seq <= ackSeq and reports how many
// were removed. Acks are cumulative, so entries leave strictly from the
// front; a stale ack removes nothing and is a no-op.
func (q *Queue) AckThrough(ackSeq uint64) int {
	removed := 0
	for q.count > 0 && q.data[q.head].Seq <= ackSeq {
		q.data[q.head] = PendingInput{}
		q.head = (q.head + 1) % len(q.data)
		q.count--
		removed++
	}
	return removed
}

// Remove deletes the entry with the given sequence number, if present.
func (q *Queue) Remove(seq uint64) bool {
	if q.count == 0 {
		return false
	}
	records := q.Snapshot()
	kept := records[:0]
	found := false
	for _, record := range records {
		if record.Seq == seq {
			found = true
			continue
		}
		kept = append(kept, record)
	}
	if found {
		q.Replace(kept)
	}
	return found
}

// Snapshot returns the pending entries in FIFO order without draining them.
func (q *Queue) Snapshot() []PendingInput {
	if q == nil || q.count == 0 {
		return nil
	}
	records := make([]PendingInput, q.count)
	for i := 0; i < q.count; i++ {
		records[i] = q.data[(q.head+i)%len(q.data)]
	}
	return records
}

// Replace rebuilds the queue from the given records, which must already be
// in ascending sequence order and fit the capacity.
func (q *Queue) Replace(records []PendingInput) {
	for i := range q.data {
		q.data[i] = PendingInput{}
	}
	q.head = 0
	q.count = 0
	for _, record := range records {
		if q.count == len(q.data) {
			break
		}
		q.data[q.count] = record
		q.count++
	}
}

// Seqs lists the pending sequence numbers in FIFO order.
func (q *Queue) Seqs() []uint64 {
	if q == nil || q.count == 0 {
		return nil
	}
	seqs := make([]uint64, q.count)
	for i := 0; i < q.count; i++ {
		seqs[i] = q.data[(q.head+i)%len(q.data)].Seq
	}
	return seqs
}
