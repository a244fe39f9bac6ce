package events

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisMaxDeliver matches the NATS consumer's MaxDeliver
const redisMaxDeliver = 3

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379) or host:port
	Password string
	DB       int
	Subject  string // Stream key
	Group    string // Consumer group (default: "simlens")
	Consumer string // Consumer name (default: hostname)
}

// RedisBus implements Bus on a Redis stream read through a consumer group
type RedisBus struct {
	client *redis.Client
	config RedisConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func newRedisBus(cfg RedisConfig) (*RedisBus, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisBusWithClient(client, cfg), nil
}

func newRedisBusWithClient(client *redis.Client, cfg RedisConfig) *RedisBus {
	if cfg.Group == "" {
		cfg.Group = "simlens"
	}
	if cfg.Consumer == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "simlens-1"
		}
		cfg.Consumer = hostname
	}
	return &RedisBus{client: client, config: cfg}
}

// Publish appends ev to the stream
func (b *RedisBus) Publish(ctx context.Context, ev RunEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}

	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.config.Subject,
		MaxLen: 1000,
		Approx: true,
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", b.config.Subject, err)
	}
	return nil
}

// Subscribe creates the consumer group if needed and reads in the background
func (b *RedisBus) Subscribe(ctx context.Context, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return ErrAlreadySubscribed
	}

	err := b.client.XGroupCreateMkStream(ctx, b.config.Subject, b.config.Group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.wg.Add(1)
	go b.readStream(ctx, h)
	return nil
}

func (b *RedisBus) readStream(ctx context.Context, h Handler) {
	defer b.wg.Done()

	attempts := make(map[string]int)
	for ctx.Err() == nil {
		// entries this consumer left pending are retried before new ones
		b.readGroup(ctx, h, "0", -1, attempts)
		b.readGroup(ctx, h, ">", 2*time.Second, attempts)
	}
}

func (b *RedisBus) readGroup(ctx context.Context, h Handler, id string, block time.Duration, attempts map[string]int) {
	streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    b.config.Group,
		Consumer: b.config.Consumer,
		Streams:  []string{b.config.Subject, id},
		Count:    16,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	for _, s := range streams {
		for _, msg := range s.Messages {
			if !b.handle(ctx, h, msg, attempts) {
				continue
			}
			delete(attempts, msg.ID)
			b.client.XAck(ctx, b.config.Subject, b.config.Group, msg.ID)
		}
	}
}

// handle runs h for msg and reports whether msg should be acked. A failing
// entry stays pending until it has been tried redisMaxDeliver times.
func (b *RedisBus) handle(ctx context.Context, h Handler, msg redis.XMessage, attempts map[string]int) bool {
	raw, ok := msg.Values["data"].(string)
	if !ok {
		return true
	}
	ev, err := decode([]byte(raw))
	if err != nil {
		return true
	}
	if err := h(ctx, ev); err != nil {
		attempts[msg.ID]++
		return attempts[msg.ID] >= redisMaxDeliver
	}
	return true
}

// Close stops the reader and closes the client
func (b *RedisBus) Close() error {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		b.wg.Wait()
	}
	return b.client.Close()
}
