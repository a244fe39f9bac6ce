package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig represents Apache Kafka configuration
type KafkaConfig struct {
	Brokers        []string
	Topic          string
	GroupID        string        // Consumer group ID (default: "simlens")
	CommitRetries  int           // default: 3
	HandlerRetries int           // attempts per message before it is committed anyway (default: 3)
	RetryBackoff   time.Duration // default: 100ms, doubled between handler attempts
}

// KafkaBus implements Bus on a Kafka topic
type KafkaBus struct {
	config KafkaConfig
	writer *kafka.Writer
	reader *kafka.Reader

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func newKafkaBus(cfg KafkaConfig) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "simlens"
	}
	if cfg.CommitRetries == 0 {
		cfg.CommitRetries = 3
	}
	if cfg.HandlerRetries == 0 {
		cfg.HandlerRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}

	return &KafkaBus{
		config: cfg,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			MaxAttempts:            3,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Publish writes ev keyed by run ID
func (b *KafkaBus) Publish(ctx context.Context, ev RunEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(ev.RunID),
		Value: data,
		Time:  ev.At,
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", b.config.Topic, err)
	}
	return nil
}

// Subscribe joins the consumer group and commits each handled message
func (b *KafkaBus) Subscribe(ctx context.Context, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return ErrAlreadySubscribed
	}

	b.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.config.Brokers,
		GroupID:  b.config.GroupID,
		Topic:    b.config.Topic,
		MinBytes: 1,
		MaxBytes: 1e6,
		MaxWait:  time.Second,
	})

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.wg.Add(1)
	go b.consume(ctx, b.reader, h)
	return nil
}

func (b *KafkaBus) consume(ctx context.Context, reader *kafka.Reader, h Handler) {
	defer b.wg.Done()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(b.config.RetryBackoff)
			continue
		}

		if ev, err := decode(msg.Value); err == nil {
			// committing a later offset would also commit this one, so
			// retry in place before moving on
			if err := b.deliver(ctx, h, ev); err != nil && ctx.Err() != nil {
				return
			}
		}

		for i := 0; i < b.config.CommitRetries; i++ {
			if err := reader.CommitMessages(ctx, msg); err == nil {
				break
			}
			if ctx.Err() != nil {
				return
			}
			time.Sleep(b.config.RetryBackoff)
		}
	}
}

// deliver runs h up to HandlerRetries times, backing off between attempts
func (b *KafkaBus) deliver(ctx context.Context, h Handler, ev RunEvent) error {
	backoff := b.config.RetryBackoff
	var err error
	for attempt := 0; attempt < b.config.HandlerRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err = h(ctx, ev); err == nil {
			return nil
		}
	}
	return err
}

// Close stops the consumer and closes the reader and writer
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	cancel := b.cancel
	reader := b.reader
	b.cancel = nil
	b.reader = nil
	b.mu.Unlock()

	var lastErr error
	if cancel != nil {
		cancel()
		b.wg.Wait()
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			lastErr = err
		}
	}
	if err := b.writer.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}
