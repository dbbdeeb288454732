package predict

import "github.com/tianzhicdev/tetris-battle-sub004/internal/sim"

// replayLocked folds the transition function over the pending inputs,
// starting from the given authoritative baseline, and returns the resulting
// prediction. Inputs the new baseline invalidates are dropped silently —
// they were valid against the state they were predicted on, not this one —
// and the queue is shrunk to mirror exactly the inputs that were folded in.
// Callers must hold s.mu.
func (s *Session) replayLocked(baseline sim.GameState) sim.GameState {
	state := baseline.Clone()
	pending := s.queue.Snapshot()
	if len(pending) == 0 {
		return state
	}

	kept := pending[:0]
	for _, record := range pending {
		next, ok := s.apply(state, record.Action)
		if !ok {
			s.metrics.RecordReplayDrop()
			s.logger.Printf("replay dropped stale input seq=%d action=%s", record.Seq, record.Action)
			continue
		}
		state = next
		record.Predicted = next.Clone()
		kept = append(kept, record)
	}
	s.queue.Replace(kept)
	return state
}
