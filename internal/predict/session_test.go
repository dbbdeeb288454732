package predict

import (
	"testing"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
)

type recordingObserver struct {
	events []Misprediction
}

func (o *recordingObserver) MispredictionDetected(event Misprediction) {
	o.events = append(o.events, event)
}

func baselineState(x int) sim.GameState {
	state := sim.NewGameState()
	state.Active = &sim.ActivePiece{Kind: sim.PieceO, X: x, Y: 0}
	return state
}

func newTestSession(t *testing.T, baseline sim.GameState, maxPending int) (*Session, *recordingObserver) {
	t.Helper()
	session := NewSession(Config{MaxPending: maxPending})
	observer := &recordingObserver{}
	session.AddObserver(observer)
	session.Reconcile(0, baseline)
	if len(observer.events) != 0 {
		t.Fatalf("seeding the baseline must not signal a misprediction")
	}
	return session, observer
}

func TestPredictSequenceIsMonotonic(t *testing.T) {
	session, _ := newTestSession(t, baselineState(3), 0)

	for i := 0; i < 10; i++ {
		action := sim.ActionMoveRight
		if i%2 == 1 {
			action = sim.ActionMoveLeft
		}
		seq, ok := session.Predict(action)
		if !ok {
			t.Fatalf("expected prediction %d to succeed", i+1)
		}
		if seq != uint64(i+1) {
			t.Fatalf("expected seq %d, got %d", i+1, seq)
		}
	}

	seqs := session.PendingSeqs()
	if len(seqs) != 10 {
		t.Fatalf("expected 10 pending entries, got %d", len(seqs))
	}
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("expected pending seq %d at position %d, got %d", i+1, i, seq)
		}
	}
}

func TestPredictIllegalInputNeverEnqueued(t *testing.T) {
	// O piece hugging the left wall: move_left can never be accepted.
	session, _ := newTestSession(t, baselineState(-1), 0)

	if seq, ok := session.Predict(sim.ActionMoveLeft); ok {
		t.Fatalf("expected illegal input to be rejected, got seq %d", seq)
	}
	if session.PendingCount() != 0 {
		t.Fatalf("expected queue untouched, got %d entries", session.PendingCount())
	}
	if session.LastSeq() != 0 {
		t.Fatalf("expected sequence counter untouched, got %d", session.LastSeq())
	}

	predicted, ok := session.PredictedState()
	if !ok || predicted.Active.X != -1 {
		t.Fatalf("expected prediction unchanged, got %+v", predicted.Active)
	}
}

func TestPredictRequiresControllablePiece(t *testing.T) {
	state := sim.NewGameState()
	session, _ := newTestSession(t, state, 0)

	if _, ok := session.Predict(sim.ActionMoveLeft); ok {
		t.Fatalf("expected piece-less prediction to be a no-op")
	}

	terminal := baselineState(3)
	terminal.GameOver = true
	session.Reconcile(0, terminal)
	if _, ok := session.Predict(sim.ActionMoveLeft); ok {
		t.Fatalf("expected terminal prediction to be a no-op")
	}
}

func TestPredictWithoutBaselineIsNoOp(t *testing.T) {
	session := NewSession(Config{})
	if _, ok := session.Predict(sim.ActionMoveRight); ok {
		t.Fatalf("expected prediction without a baseline to be a no-op")
	}
}

func TestBoundedQueueEvictsOldest(t *testing.T) {
	session, _ := newTestSession(t, baselineState(3), 50)

	for i := 0; i < 50; i++ {
		action := sim.ActionMoveRight
		if i%2 == 1 {
			action = sim.ActionMoveLeft
		}
		if _, ok := session.Predict(action); !ok {
			t.Fatalf("expected prediction %d to succeed", i+1)
		}
	}
	if session.PendingCount() != 50 {
		t.Fatalf("expected 50 pending entries, got %d", session.PendingCount())
	}

	seq, ok := session.Predict(sim.ActionMoveRight)
	if !ok {
		t.Fatalf("expected prediction beyond capacity to succeed")
	}
	if seq != 51 {
		t.Fatalf("expected seq 51, got %d", seq)
	}

	seqs := session.PendingSeqs()
	if len(seqs) != 50 {
		t.Fatalf("expected queue length 50, got %d", len(seqs))
	}
	if seqs[0] != 2 || seqs[len(seqs)-1] != 51 {
		t.Fatalf("expected entries {2..51}, got first=%d last=%d", seqs[0], seqs[len(seqs)-1])
	}
}

func TestPredictedStateTracksLatestPrediction(t *testing.T) {
	session, _ := newTestSession(t, baselineState(3), 0)

	if _, ok := session.Predict(sim.ActionMoveRight); !ok {
		t.Fatalf("expected prediction to succeed")
	}

	predicted, ok := session.PredictedState()
	if !ok || predicted.Active.X != 4 {
		t.Fatalf("expected predicted piece at x=4, got %+v", predicted.Active)
	}

	// The server copy is untouched by local predictions.
	server, ok := session.ServerState()
	if !ok || server.Active.X != 3 {
		t.Fatalf("expected server piece at x=3, got %+v", server.Active)
	}
}

func TestObserverRemoval(t *testing.T) {
	session, observer := newTestSession(t, baselineState(3), 0)
	second := &recordingObserver{}
	remove := session.AddObserver(second)
	remove()

	session.Reject(1, baselineState(3))
	if len(observer.events) != 1 {
		t.Fatalf("expected the remaining observer to be signalled once, got %d", len(observer.events))
	}
	if len(second.events) != 0 {
		t.Fatalf("expected the removed observer to stay silent, got %d", len(second.events))
	}
}
