package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
)

// Store persists sessions, issued inputs, and received snapshots to sqlite
// so a finished game can be refolded offline and checked for determinism.
type Store struct {
	db *sql.DB
}

// SessionInfo describes one recorded session.
type SessionInfo struct {
	ID        string
	StartedAt time.Time
}

// InputRecord is one issued input as it went over the wire.
type InputRecord struct {
	Seq    uint64
	Action sim.Action
	SentAt time.Time
}

// SnapshotRecord is one authoritative message as it arrived.
type SnapshotRecord struct {
	AckSeq     uint64
	State      sim.GameState
	Rejected   bool
	ReceivedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS inputs (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq INTEGER NOT NULL,
	action TEXT NOT NULL,
	sent_at INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE TABLE IF NOT EXISTS snapshots (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	ack_seq INTEGER NOT NULL,
	state TEXT NOT NULL,
	rejected INTEGER NOT NULL DEFAULT 0,
	received_at INTEGER NOT NULL
);
`

// Open opens (creating if needed) the journal database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartSession registers a new session.
func (s *Store) StartSession(id string, startedAt time.Time) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)`, id, startedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record session %s: %w", id, err)
	}
	return nil
}

// RecordInput stores one issued input.
func (s *Store) RecordInput(sessionID string, seq uint64, action sim.Action, sentAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO inputs (session_id, seq, action, sent_at) VALUES (?, ?, ?, ?)`,
		sessionID, int64(seq), string(action), sentAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record input seq=%d: %w", seq, err)
	}
	return nil
}

// RecordSnapshot stores one authoritative message.
func (s *Store) RecordSnapshot(sessionID string, ackSeq uint64, state sim.GameState, rejected bool) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot ack=%d: %w", ackSeq, err)
	}
	flag := 0
	if rejected {
		flag = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (session_id, ack_seq, state, rejected, received_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, int64(ackSeq), string(encoded), flag, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record snapshot ack=%d: %w", ackSeq, err)
	}
	return nil
}

// Sessions lists recorded sessions, newest first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`SELECT id, started_at FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var startedAt int64
		if err := rows.Scan(&info.ID, &startedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.StartedAt = time.UnixMilli(startedAt)
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// Inputs lists a session's inputs in sequence order.
func (s *Store) Inputs(sessionID string) ([]InputRecord, error) {
	rows, err := s.db.Query(
		`SELECT seq, action, sent_at FROM inputs WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inputs for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var inputs []InputRecord
	for rows.Next() {
		var record InputRecord
		var seq, sentAt int64
		var action string
		if err := rows.Scan(&seq, &action, &sentAt); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		record.Seq = uint64(seq)
		record.Action = sim.Action(action)
		record.SentAt = time.UnixMilli(sentAt)
		inputs = append(inputs, record)
	}
	return inputs, rows.Err()
}

// Snapshots lists a session's authoritative messages in arrival order.
func (s *Store) Snapshots(sessionID string) ([]SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT ack_seq, state, rejected, received_at FROM snapshots WHERE session_id = ? ORDER BY received_at ASC, ack_seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var snapshots []SnapshotRecord
	for rows.Next() {
		var record SnapshotRecord
		var ackSeq, receivedAt int64
		var encoded string
		var rejected int
		if err := rows.Scan(&ackSeq, &encoded, &rejected, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &record.State); err != nil {
			return nil, fmt.Errorf("decode snapshot ack=%d: %w", ackSeq, err)
		}
		record.AckSeq = uint64(ackSeq)
		record.Rejected = rejected != 0
		record.ReceivedAt = time.UnixMilli(receivedAt)
		snapshots = append(snapshots, record)
	}
	return snapshots, rows.Err()
}
