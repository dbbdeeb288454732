package predict

import "github.com/tianzhicdev/tetris-battle-sub004/internal/sim"

// Predict applies a local input optimistically. On success it returns the
// newly issued sequence number, to be attached to the outbound message so
// the eventual acknowledgment or rejection can be correlated.
//
// It returns ok=false without mutating anything when no baseline exists yet,
// when the game is over or there is no controllable piece, or when the
// transition function rejects the action. An input the server could never
// have accepted is not worth queueing.
func (s *Session) Predict(action sim.Action) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasPredicted || s.predicted.GameOver || s.predicted.Active == nil {
		return 0, false
	}

	next, ok := s.apply(s.predicted, action)
	if !ok {
		return 0, false
	}

	s.nextSeq++
	record := PendingInput{
		Seq:       s.nextSeq,
		Action:    action,
		Predicted: next.Clone(),
		IssuedAt:  s.clock(),
	}
	if evicted, ok := s.queue.Push(record); ok {
		s.metrics.RecordEviction()
		s.logger.Printf("evicting unacked input seq=%d action=%s", evicted.Seq, evicted.Action)
	}
	s.predicted = next
	s.metrics.RecordPrediction()
	return record.Seq, true
}
