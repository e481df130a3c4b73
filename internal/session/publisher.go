package session

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lox/siliconcasino/internal/game"
)

// DefaultPublisherBuffer is the queue size used when none is given.
const DefaultPublisherBuffer = 1024

// Sink receives events fanned out by a Publisher.
type Sink interface {
	Deliver(tableID string, e game.Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(tableID string, e game.Event)

func (f SinkFunc) Deliver(tableID string, e game.Event) { f(tableID, e) }

type message struct {
	tableID string
	event   game.Event
}

// Publisher decouples table loops from event consumers. OnEvent never
// blocks: when the queue is full the event is dropped and counted, and
// consumers see the gap in the per-hand sequence numbers.
type Publisher struct {
	queue   chan message
	sinks   []Sink
	dropped atomic.Uint64
	logger  *log.Logger
}

// NewPublisher creates a publisher with the given queue size.
func NewPublisher(buffer int, logger *log.Logger, sinks ...Sink) *Publisher {
	if buffer <= 0 {
		buffer = DefaultPublisherBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{
		queue:  make(chan message, buffer),
		sinks:  sinks,
		logger: logger.WithPrefix("publisher"),
	}
}

// OnEvent implements game.EventSubscriber.
func (p *Publisher) OnEvent(tableID string, e game.Event) {
	select {
	case p.queue <- message{tableID: tableID, event: e}:
	default:
		if n := p.dropped.Add(1); n == 1 || n%1000 == 0 {
			p.logger.Warn("Event queue full, dropping events", "table", tableID, "dropped", n)
		}
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Run delivers queued events to every sink until ctx is cancelled. Events
// still queued at that point are delivered before Run returns.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case m := <-p.queue:
			p.deliver(m)
		case <-ctx.Done():
			for {
				select {
				case m := <-p.queue:
					p.deliver(m)
				default:
					return nil
				}
			}
		}
	}
}

func (p *Publisher) deliver(m message) {
	for _, s := range p.sinks {
		s.Deliver(m.tableID, m.event)
	}
}
