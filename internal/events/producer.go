package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/fbawholesale/ops-service/internal/logging"
)

// Producer publishes lifecycle events to Kafka. A nil Producer silently
// drops events so the service runs without a broker.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	service string
}

// NewProducer builds an async producer, or nil when no brokers are configured.
func NewProducer(brokers []string, topic, service string, buf int) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		service: service,
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is
// already queued, closes the writer and signals WaitClosed. The inbox is
// never closed, so a Publish racing the shutdown cannot panic; it is
// dropped instead.
func (p *Producer) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		logging.LogKV("error", "event publish failed", map[string]interface{}{"err": err.Error()})
	}
}

// Publish wraps the payload in an envelope and queues it. Safe on nil, and
// safe during or after shutdown: once the drain loop has stopped the event
// is dropped rather than sent.
func (p *Producer) Publish(eventType, correlationID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: correlationID,
		Payload:       json.RawMessage(MustMarshal(payload)),
	}
	msg := kafka.Message{
		Key:   PartitionKey(correlationID),
		Value: MustMarshal(ev),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	select {
	case <-p.closeCh:
	case p.inbox <- msg:
	}
}

// WaitClosed blocks until the drain loop has flushed and closed the writer.
// Call after the HTTP server has stopped accepting requests. Safe on nil.
func (p *Producer) WaitClosed() {
	if p == nil {
		return
	}
	<-p.closeCh
}
