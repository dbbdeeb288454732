package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
)

// Version tracks the wire-protocol revision expected by the server.
const Version = 1

// Message type identifiers.
const (
	TypePlayerInput = "player_input"
	TypeStateUpdate = "state_update"
	TypeAck         = "ack"
	TypeRejected    = "rejected"
)

// PlayerInput is the outbound envelope for one optimistically-applied input.
// Seq correlates the local echo with the eventual acknowledgment.
type PlayerInput struct {
	Ver    int        `json:"ver"`
	Type   string     `json:"type"`
	Seq    uint64     `json:"seq"`
	Action sim.Action `json:"action"`
	SentAt int64      `json:"sentAt"`
}

// ServerMessage is the inbound envelope: an authoritative snapshot tagged
// with an acknowledged sequence number, or an explicit rejection of one.
type ServerMessage struct {
	Ver    int            `json:"ver,omitempty"`
	Type   string         `json:"type"`
	Seq    uint64         `json:"seq"`
	State  *sim.GameState `json:"state,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// NewPlayerInput builds the outbound envelope for a predicted input.
func NewPlayerInput(seq uint64, action sim.Action, sentAt time.Time) PlayerInput {
	return PlayerInput{
		Ver:    Version,
		Type:   TypePlayerInput,
		Seq:    seq,
		Action: action,
		SentAt: sentAt.UnixMilli(),
	}
}

// EncodePlayerInput renders the outbound envelope.
func EncodePlayerInput(msg PlayerInput) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode player input seq=%d: %w", msg.Seq, err)
	}
	return data, nil
}

// DecodeServerMessage parses an inbound payload. Unknown message types are
// not an error here — the caller decides whether to skip them — but a
// payload that does not parse, or an authoritative message without a state,
// is reported as one.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	if msg.Authoritative() && msg.State == nil {
		return ServerMessage{}, fmt.Errorf("server message type=%s seq=%d carries no state", msg.Type, msg.Seq)
	}
	return msg, nil
}

// Authoritative reports whether the message carries a snapshot the
// reconciliation engine must consume.
func (m ServerMessage) Authoritative() bool {
	switch m.Type {
	case TypeStateUpdate, TypeAck, TypeRejected:
		return true
	default:
		return false
	}
}
