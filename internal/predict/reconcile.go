package predict

import "github.com/tianzhicdev/tetris-battle-sub004/internal/sim"

// Reconcile consumes an authoritative snapshot acknowledging every input
// with seq <= ackSeq. Acks are cumulative, so a stale or duplicate ackSeq
// removes nothing and the call degrades to a snapshot refresh.
//
// The authoritative state is adopted unconditionally as the server state.
// Divergence is judged against the prediction as it stood before this call;
// on divergence the observers are signalled once and the remaining pending
// inputs are replayed on top of the new baseline.
func (s *Session) Reconcile(ackSeq uint64, authoritative sim.GameState) {
	s.mu.Lock()

	if removed := s.queue.AckThrough(ackSeq); removed > 0 {
		s.metrics.RecordAck(removed)
	}

	s.server = authoritative.Clone()
	s.hasServer = true

	// The very first snapshot seeds the prediction; there is nothing to
	// compare against and nothing queued.
	if !s.hasPredicted {
		s.predicted = authoritative.Clone()
		s.hasPredicted = true
		s.mu.Unlock()
		return
	}

	diverged := !Equivalent(s.predicted, authoritative)
	if diverged {
		s.predicted = s.replayLocked(authoritative)
	} else if s.queue.Len() == 0 {
		// Equivalent by construction; collapse onto the fresher copy.
		s.predicted = authoritative.Clone()
	}
	// Inputs still pending over a consistent baseline need no correction:
	// the prediction already equals the eventual replay result.
	s.mu.Unlock()

	if diverged {
		s.metrics.RecordMisprediction()
		s.notify(Misprediction{Seq: ackSeq, Reason: ReasonStateDivergence})
	}
}

// Reject handles an explicit server refusal of one input. The entry is
// proven invalid, so no equality check gates this path: the rejected record
// is dropped, the prediction snaps to the authoritative baseline, and every
// later pending input is replayed on top of it. Observers are always
// signalled — a rejection is definitional proof of divergence.
func (s *Session) Reject(rejectedSeq uint64, authoritative sim.GameState) {
	s.mu.Lock()
	s.queue.Remove(rejectedSeq)
	s.server = authoritative.Clone()
	s.hasServer = true
	s.predicted = s.replayLocked(authoritative)
	s.hasPredicted = true
	s.mu.Unlock()

	s.metrics.RecordRejection()
	s.metrics.RecordMisprediction()
	s.notify(Misprediction{Seq: rejectedSeq, Reason: ReasonRejected})
}
