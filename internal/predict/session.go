package predict

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/telemetry"
)

// DefaultMaxPending bounds the unconfirmed input queue.
const DefaultMaxPending = 50

// Misprediction describes a detected divergence between the predicted and
// authoritative state. Observers receive it as a read-only value and cannot
// alter engine behavior.
type Misprediction struct {
	Seq    uint64
	Reason string
}

// Misprediction reasons.
const (
	ReasonStateDivergence = "state_divergence"
	ReasonRejected        = "rejected"
)

// Observer is notified whenever the session detects a misprediction.
type Observer interface {
	MispredictionDetected(event Misprediction)
}

// ObserverFunc adapts functions into the Observer interface.
type ObserverFunc func(event Misprediction)

// MispredictionDetected implements Observer for ObserverFunc.
func (f ObserverFunc) MispredictionDetected(event Misprediction) {
	if f == nil {
		return
	}
	f(event)
}

// Config tunes a session. Zero values fall back to defaults.
type Config struct {
	MaxPending int
	Apply      TransitionFunc
	Metrics    Metrics
	Logger     telemetry.Logger
	Clock      func() time.Time
}

// Session owns the speculative-execution state for one game: the pending
// input queue, the monotonic sequence counter, and the predicted and server
// snapshots. Each handler runs to completion under the session mutex, so
// a local prediction never interleaves with a reconciliation.
type Session struct {
	mu      sync.Mutex
	id      string
	apply   TransitionFunc
	metrics Metrics
	logger  telemetry.Logger
	clock   func() time.Time

	queue        *Queue
	nextSeq      uint64
	predicted    sim.GameState
	hasPredicted bool
	server       sim.GameState
	hasServer    bool

	observerMu sync.Mutex
	observers  map[int]Observer
	observerID int
}

// NewSession constructs a session with no baseline. The first reconciliation
// (typically the join snapshot) seeds both the server and predicted state.
func NewSession(cfg Config) *Session {
	apply := cfg.Apply
	if apply == nil {
		apply = sim.Apply
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	capacity := cfg.MaxPending
	if capacity <= 0 {
		capacity = DefaultMaxPending
	}
	return &Session{
		id:        uuid.NewString(),
		apply:     apply,
		metrics:   metrics,
		logger:    logger,
		clock:     clock,
		queue:     NewQueue(capacity),
		observers: make(map[int]Observer),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddObserver registers a misprediction observer and returns its remover.
func (s *Session) AddObserver(observer Observer) func() {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()
	s.observerID++
	id := s.observerID
	s.observers[id] = observer
	return func() {
		s.observerMu.Lock()
		defer s.observerMu.Unlock()
		delete(s.observers, id)
	}
}

// notify delivers the event to every registered observer. It must be called
// without holding the session mutex so observers can read session state.
func (s *Session) notify(event Misprediction) {
	s.observerMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.observerMu.Unlock()
	for _, observer := range observers {
		observer.MispredictionDetected(event)
	}
}

// PredictedState returns a snapshot of the externally-visible prediction.
func (s *Session) PredictedState() (sim.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPredicted {
		return sim.GameState{}, false
	}
	return s.predicted.Clone(), true
}

// ServerState returns a snapshot of the latest authoritative state.
func (s *Session) ServerState() (sim.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasServer {
		return sim.GameState{}, false
	}
	return s.server.Clone(), true
}

// PendingCount reports the number of unconfirmed inputs.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// PendingSeqs lists the unconfirmed sequence numbers in FIFO order.
func (s *Session) PendingSeqs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Seqs()
}

// LastSeq reports the most recently issued sequence number, 0 if none.
func (s *Session) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSeq
}
