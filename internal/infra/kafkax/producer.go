package kafkax

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer writes asynchronously through a buffered inbox so request paths
// never block on the broker. Messages carry their own topic.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.closeWriter()
					return
				}
				p.write(m)
			}
		}
	}()
}

// Publish drops the message when the inbox is full rather than blocking the
// caller. The database stays authoritative either way.
func (p *Producer) Publish(topic string, key, value []byte) {
	m := kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	select {
	case p.inbox <- m:
	default:
		slog.Warn("event inbox full, dropping message", "topic", topic)
	}
}

// Close stops intake; the loop flushes whatever is buffered and exits.
func (p *Producer) Close() { close(p.inbox) }

func (p *Producer) WaitClosed() { <-p.closeCh }

func (p *Producer) drain() {
	close(p.inbox)
	for m := range p.inbox {
		p.write(m)
	}
	p.closeWriter()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		slog.Error("failed to write kafka message", "topic", m.Topic, "error", err.Error())
	}
}

func (p *Producer) closeWriter() {
	if err := p.w.Close(); err != nil {
		slog.Warn("failed to close kafka writer", "error", err.Error())
	}
}
