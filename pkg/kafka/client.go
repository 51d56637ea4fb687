// Package kafka publishes and consumes chat audit events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/segmentio/kafka-go"
)

// maxAttempts is how many times a failing event is retried before its offset is committed.
const maxAttempts = 3

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventHandler processes one chat event.
type EventHandler interface {
	Handle(ctx context.Context, event model.ChatEvent) error
}

// AttemptCounter tracks failed processing attempts per key.
type AttemptCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

func brokerList(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Producer writes chat events keyed by request id.
type Producer struct {
	writer messageWriter
}

// NewProducer creates a producer for the configured topic.
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokerList(cfg.Brokers)...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	log.Infof("[Kafka] producer initialized, topic: %s", cfg.Topic)
	return &Producer{writer: w}
}

// Publish sends event to the topic.
func (p *Producer) Publish(ctx context.Context, event model.ChatEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal chat event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.RequestID), Value: value}); err != nil {
		return fmt.Errorf("failed to publish chat event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer feeds chat events to an EventHandler, committing offsets manually.
type Consumer struct {
	reader   messageReader
	handler  EventHandler
	attempts AttemptCounter
}

func newConsumer(reader messageReader, handler EventHandler, attempts AttemptCounter) *Consumer {
	return &Consumer{reader: reader, handler: handler, attempts: attempts}
}

// StartConsumer consumes the chat event topic until ctx is cancelled.
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, handler EventHandler, attempts AttemptCounter) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokerList(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	log.Infof("[Kafka] consumer started, listening on topic '%s'", cfg.Topic)
	newConsumer(r, handler, attempts).run(ctx)
}

func (c *Consumer) run(ctx context.Context) {
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Errorf("[Kafka] failed to close consumer: %v", err)
		}
	}()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("[Kafka] consumer stopped")
				return
			}
			log.Error("[Kafka] failed to fetch message", err)
			return
		}
		if c.handleMessage(ctx, m) {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				log.Errorf("[Kafka] failed to commit offset %d: %v", m.Offset, err)
			}
		}
	}
}

// handleMessage processes m and reports whether its offset should be committed. Undecodable
// messages are committed right away; failing ones only after maxAttempts.
func (c *Consumer) handleMessage(ctx context.Context, m kafka.Message) bool {
	var event model.ChatEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Errorf("[Kafka] cannot decode message at offset %d: %v, value: %s", m.Offset, err, string(m.Value))
		return true
	}

	attemptsKey := "kafka:attempts:" + event.RequestID
	if err := c.handler.Handle(ctx, event); err != nil {
		log.Errorf("[Kafka] failed to handle chat event %s: %v", event.RequestID, err)
		attempts, incErr := c.attempts.Incr(ctx, attemptsKey)
		if incErr != nil {
			// leave the offset uncommitted so Kafka redelivers
			return false
		}
		if attempts >= maxAttempts {
			log.Errorf("[Kafka] chat event %s failed %d times, giving up", event.RequestID, attempts)
			return true
		}
		return false
	}

	_ = c.attempts.Reset(ctx, attemptsKey)
	return true
}
