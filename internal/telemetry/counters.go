package telemetry

import "sync/atomic"

// Counters aggregates prediction and reconciliation metrics for the session.
// All methods are safe for concurrent use.
type Counters struct {
	predictions    atomic.Uint64
	mispredictions atomic.Uint64
	rejections     atomic.Uint64
	evictions      atomic.Uint64
	replayDrops    atomic.Uint64
	acked          atomic.Uint64
}

// Snapshot is the JSON-serializable view of the counters.
type Snapshot struct {
	Predictions    uint64 `json:"predictions"`
	Mispredictions uint64 `json:"mispredictions"`
	Rejections     uint64 `json:"rejections"`
	Evictions      uint64 `json:"evictions"`
	ReplayDrops    uint64 `json:"replayDrops"`
	Acked          uint64 `json:"acked"`
}

// NewCounters constructs a zeroed counter set.
func NewCounters() *Counters {
	return &Counters{}
}

// RecordPrediction counts a successfully predicted local input.
func (c *Counters) RecordPrediction() {
	if c == nil {
		return
	}
	c.predictions.Add(1)
}

// RecordMisprediction counts a detected divergence from the server.
func (c *Counters) RecordMisprediction() {
	if c == nil {
		return
	}
	c.mispredictions.Add(1)
}

// RecordRejection counts an input the server explicitly refused.
func (c *Counters) RecordRejection() {
	if c == nil {
		return
	}
	c.rejections.Add(1)
}

// RecordEviction counts a pending input evicted for capacity.
func (c *Counters) RecordEviction() {
	if c == nil {
		return
	}
	c.evictions.Add(1)
}

// RecordReplayDrop counts a pending input invalidated during replay.
func (c *Counters) RecordReplayDrop() {
	if c == nil {
		return
	}
	c.replayDrops.Add(1)
}

// RecordAck counts inputs confirmed by a cumulative acknowledgment.
func (c *Counters) RecordAck(removed int) {
	if c == nil || removed <= 0 {
		return
	}
	c.acked.Add(uint64(removed))
}

// Read returns a point-in-time snapshot of all counters.
func (c *Counters) Read() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Predictions:    c.predictions.Load(),
		Mispredictions: c.mispredictions.Load(),
		Rejections:     c.rejections.Load(),
		Evictions:      c.evictions.Load(),
		ReplayDrops:    c.replayDrops.Load(),
		Acked:          c.acked.Load(),
	}
}
