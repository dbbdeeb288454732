package predict

import "github.com/tianzhicdev/tetris-battle-sub004/internal/sim"

// TransitionFunc is the deterministic transition function consumed by the
// predictor and the replay engine. It must be pure: identical inputs always
// yield identical outputs, and illegal actions report ok=false rather than
// panicking. Replay correctness rests entirely on this purity.
type TransitionFunc func(state sim.GameState, action sim.Action) (sim.GameState, bool)

// Metrics captures the telemetry methods required by the session.
type Metrics interface {
	RecordPrediction()
	RecordMisprediction()
	RecordRejection()
	RecordEviction()
	RecordReplayDrop()
	RecordAck(removed int)
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction()    {}
func (nopMetrics) RecordMisprediction() {}
func (nopMetrics) RecordRejection()     {}
func (nopMetrics) RecordEviction()      {}
func (nopMetrics) RecordReplayDrop()    {}
func (nopMetrics) RecordAck(int)        {}
