package logging

import (
	"context"
	"time"
)

type EventType string

// Event vocabulary emitted by the client.
const (
	EventSessionStart   EventType = "session.start"
	EventNetworkConnect EventType = "network.connect"
	EventNetworkClose   EventType = "network.disconnect"
	EventMisprediction  EventType = "predict.misprediction"
	EventInputEvicted   EventType = "predict.evicted"
	EventReplayDropped  EventType = "replay.dropped"
)

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

const (
	CategoryGameplay = "gameplay"
	CategoryNetwork  = "network"
	CategorySystem   = "system"
)

// Event is one structured log record.
type Event struct {
	Type     EventType      `json:"type"`
	Session  string         `json:"session,omitempty"`
	Seq      uint64         `json:"seq,omitempty"`
	Time     time.Time      `json:"time"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func NopPublisher() Publisher {
	return nopPublisher{}
}
