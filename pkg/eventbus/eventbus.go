// Package eventbus publishes matching-engine outcomes onto NATS subjects
// so downstream consumers (settlement, market data, audit) can follow
// the book without polling it. It replaces the original engine's Kafka
// producer with NATS, the messaging stack this codebase's examples
// actually carry.
package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pepemon42069/gemmy/internal/gemmy"
	"github.com/pepemon42069/gemmy/pkg/log"
)

// EventKind labels the shape of an Event's Payload.
type EventKind string

const (
	EventCreateOrder      EventKind = "CreateOrder"
	EventFillOrder        EventKind = "FillOrder"
	EventPartialFillOrder EventKind = "PartialFillOrder"
	EventCancelModifyOrder EventKind = "CancelModifyOrder"
)

// Event is the JSON envelope published for every accepted operation.
type Event struct {
	Kind      EventKind   `json:"kind"`
	Ticker    string      `json:"ticker"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher publishes FillResult outcomes to NATS subjects under
// "<subjectPrefix>.<ticker>.<kind>" (e.g. "gemmy.events.GEM-USD.FillOrder"),
// one subject per EventKind.
type Publisher struct {
	nc            *nats.Conn
	subjectPrefix string
	ticker        string
	logger        log.Logger

	now func() time.Time
}

// NewPublisher connects to natsURL and returns a Publisher scoped to
// ticker, publishing under subjectPrefix.
func NewPublisher(natsURL, subjectPrefix, ticker string) (*Publisher, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect to nats: %w", err)
	}
	return &Publisher{
		nc:            nc,
		subjectPrefix: subjectPrefix,
		ticker:        ticker,
		logger:        log.NewLogger("eventbus"),
		now:           time.Now,
	}, nil
}

// Close flushes and closes the underlying NATS connection.
func (p *Publisher) Close() {
	p.nc.Close()
}

// kindFor maps a FillResult to the EventKind it is published under.
// Cancel and Modify share CancelModifyOrder, mirroring the original
// engine's combined cancel/modify execution-result tag.
func kindFor(result gemmy.FillResult) (EventKind, error) {
	switch result.(type) {
	case gemmy.Created:
		return EventCreateOrder, nil
	case gemmy.Filled:
		return EventFillOrder, nil
	case gemmy.PartiallyFilled:
		return EventPartialFillOrder, nil
	case gemmy.Cancelled, gemmy.Modified:
		return EventCancelModifyOrder, nil
	default:
		return "", fmt.Errorf("eventbus: unrecognized fill result type %T", result)
	}
}

// buildEvent constructs the Event envelope for result without touching
// the network, so the mapping can be tested independently of a live
// NATS connection.
func buildEvent(result gemmy.FillResult, ticker string, at time.Time) (Event, EventKind, error) {
	kind, err := kindFor(result)
	if err != nil {
		return Event{}, "", err
	}
	return Event{
		Kind:      kind,
		Ticker:    ticker,
		Timestamp: at.UnixNano(),
		Payload:   result,
	}, kind, nil
}

// PublishFillResult maps a FillResult onto its corresponding Event and
// publishes it. Rejected operations are never published — only
// successfully Executed side effects reach the bus.
func (p *Publisher) PublishFillResult(result gemmy.FillResult) error {
	event, kind, err := buildEvent(result, p.ticker, p.now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}

	subject := p.subjectPrefix + "." + p.ticker + "." + string(kind)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish event", "subject", subject, "error", err)
		return err
	}
	return nil
}
