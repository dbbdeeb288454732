package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/predict"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/proto"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/telemetry"
)

const writeWait = 10 * time.Second

// Recorder captures the journal methods the client needs. Nil-safe via the
// nop implementation.
type Recorder interface {
	RecordInput(sessionID string, seq uint64, action sim.Action, sentAt time.Time) error
	RecordSnapshot(sessionID string, ackSeq uint64, state sim.GameState, rejected bool) error
}

type nopRecorder struct{}

func (nopRecorder) RecordInput(string, uint64, sim.Action, time.Time) error {
	return nil
}

func (nopRecorder) RecordSnapshot(string, uint64, sim.GameState, bool) error {
	return nil
}

// Config tunes a client connection.
type Config struct {
	Logger  telemetry.Logger
	Journal Recorder
	Clock   func() time.Time
}

// Client drives one websocket connection: it sends predicted inputs out and
// feeds authoritative snapshots and rejections into the session. The read
// loop is the only goroutine consuming the connection; writes are locked.
type Client struct {
	conn    *websocket.Conn
	session *predict.Session
	logger  telemetry.Logger
	journal Recorder
	clock   func() time.Time

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial connects to the game server and binds the connection to a session.
func Dial(ctx context.Context, url string, session *predict.Session, cfg Config) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(conn, session, cfg), nil
}

// NewClient wraps an established connection. Split from Dial for tests.
func NewClient(conn *websocket.Conn, session *predict.Session, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	journal := cfg.Journal
	if journal == nil {
		journal = nopRecorder{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		conn:    conn,
		session: session,
		logger:  logger,
		journal: journal,
		clock:   clock,
	}
}

// SendInput predicts the action locally and, on success, transmits it with
// its sequence number. ok=false means the input was illegal against the
// current prediction and nothing was sent or queued.
func (c *Client) SendInput(action sim.Action) (uint64, bool, error) {
	seq, ok := c.session.Predict(action)
	if !ok {
		return 0, false, nil
	}

	sentAt := c.clock()
	data, err := proto.EncodePlayerInput(proto.NewPlayerInput(seq, action, sentAt))
	if err != nil {
		return seq, true, err
	}
	if err := c.writeMessage(data); err != nil {
		return seq, true, fmt.Errorf("send input seq=%d: %w", seq, err)
	}
	if err := c.journal.RecordInput(c.session.ID(), seq, action, sentAt); err != nil {
		c.logger.Printf("journal input seq=%d: %v", seq, err)
	}
	return seq, true, nil
}

func (c *Client) writeMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Run consumes server messages until the connection fails or the context is
// cancelled. Malformed or unrecognized payloads are logged and skipped; the
// protocol layer owns them, not the reconciliation core.
func (c *Client) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read server message: %w", err)
		}

		msg, err := proto.DecodeServerMessage(payload)
		if err != nil {
			c.logger.Printf("discarding malformed server message: %v", err)
			continue
		}

		switch msg.Type {
		case proto.TypeStateUpdate, proto.TypeAck:
			c.session.Reconcile(msg.Seq, *msg.State)
			if err := c.journal.RecordSnapshot(c.session.ID(), msg.Seq, *msg.State, false); err != nil {
				c.logger.Printf("journal snapshot seq=%d: %v", msg.Seq, err)
			}
		case proto.TypeRejected:
			c.session.Reject(msg.Seq, *msg.State)
			if err := c.journal.RecordSnapshot(c.session.ID(), msg.Seq, *msg.State, true); err != nil {
				c.logger.Printf("journal rejection seq=%d: %v", msg.Seq, err)
			}
		default:
			c.logger.Printf("unknown server message type %q", msg.Type)
		}
	}
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(websocket.CloseMessage, message)
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
