package events

import (
	"context"
	"encoding/json"
	"sync"

	"gerai-be/internal/logger"
	"gerai-be/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits order events. The order service depends on this
// interface so tests and broker-less deployments can swap in Nop.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType, orderID string, payload any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(ctx context.Context, topic, eventType, orderID string, payload any) {}

// Producer buffers events in an inbox channel and writes them to Kafka
// from a single goroutine, so request handlers never block on the broker.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}

	// Guards closed. The inbox channel itself is never closed; once
	// closed is set, Publish stops enqueueing and the writer loop
	// drains what is already buffered.
	mu     sync.Mutex
	closed bool

	Published metrics.Counter
	Dropped   metrics.Counter
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

// Start runs the writer loop until ctx is cancelled, then flushes the
// remaining inbox before closing the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)

		for {
			select {
			case <-ctx.Done():
				p.mu.Lock()
				p.closed = true
				p.mu.Unlock()

				// New publishes are rejected now; flush what is
				// already buffered.
				for {
					select {
					case m := <-p.inbox:
						_ = p.w.WriteMessages(context.Background(), m)
					default:
						_ = p.w.Close()
						return
					}
				}
			case m := <-p.inbox:
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					logger.L().Error("failed to write kafka message",
						zap.String("topic", m.Topic),
						zap.Error(err),
					)
				}
			}
		}
	}()
}

// enqueue queues the message unless the producer has shut down or the
// inbox is full.
func (p *Producer) enqueue(msg kafka.Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	select {
	case p.inbox <- msg:
		return true
	default:
		return false
	}
}

// Publish wraps the payload in an envelope and queues it. A full inbox
// drops the event rather than stalling the caller.
func (p *Producer) Publish(ctx context.Context, topic, eventType, orderID string, payload any) {
	log := logger.FromCtx(ctx).With(
		zap.String("topic", topic),
		zap.String("event_type", eventType),
		zap.String("order_id", orderID),
	)

	env, err := NewEnvelope(eventType, orderID, payload)
	if err != nil {
		log.Error("failed to build event envelope", zap.Error(err))
		return
	}

	value, err := json.Marshal(env)
	if err != nil {
		log.Error("failed to marshal event envelope", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   PartitionKey(orderID),
		Value: value,
		Time:  env.OccurredAt,
	}

	if p.enqueue(msg) {
		p.Published.Inc()
		log.Debug("event queued", zap.String("event_id", env.EventID))
	} else {
		p.Dropped.Inc()
		log.Warn("event dropped, producer inbox full or shut down")
	}
}

// WaitClosed blocks until the writer loop has flushed and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
