package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBus implements Bus on a NATS JetStream stream with a durable consumer,
// so a run announced while the server was down is still analysed on start.
type NATSBus struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	ownConn bool

	sub *nats.Subscription
	mu  sync.Mutex
}

func newNATSBus(url, subject string) (*NATSBus, error) {
	conn, err := nats.Connect(url, nats.Name("simlens"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	bus, err := newNATSBusWithConn(conn, subject)
	if err != nil {
		conn.Close()
		return nil, err
	}
	bus.ownConn = true
	return bus, nil
}

func newNATSBusWithConn(conn *nats.Conn, subject string) (*NATSBus, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSBus{conn: conn, js: js, subject: subject}, nil
}

// ensureStream creates the stream backing the subject if it does not exist
func (b *NATSBus) ensureStream() error {
	name := streamName(b.subject)
	if _, err := b.js.StreamInfo(name); err == nil {
		return nil
	}

	_, err := b.js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{b.subject},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream for subject %s: %w", b.subject, err)
	}
	return nil
}

// Publish sends ev and waits for the JetStream ack
func (b *NATSBus) Publish(ctx context.Context, ev RunEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}
	if err := b.ensureStream(); err != nil {
		return err
	}

	if _, err := b.js.Publish(b.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", b.subject, err)
	}
	return nil
}

// Subscribe attaches a durable, manually acked consumer. A handler error
// NAKs the message for redelivery.
func (b *NATSBus) Subscribe(ctx context.Context, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		return ErrAlreadySubscribed
	}
	if err := b.ensureStream(); err != nil {
		return err
	}

	sub, err := b.js.Subscribe(b.subject, func(msg *nats.Msg) {
		ev, err := decode(msg.Data)
		if err != nil {
			// poison message, drop it
			_ = msg.Term()
			return
		}
		if err := h(ctx, ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("consumer-"+sanitizeName(b.subject)),
		nats.ManualAck(),
		nats.MaxAckPending(16),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", b.subject, err)
	}
	b.sub = sub

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.sub == sub {
			_ = sub.Unsubscribe()
			b.sub = nil
		}
	}()

	return nil
}

// Close unsubscribes and closes the connection when the bus opened it
func (b *NATSBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
	if b.ownConn {
		b.conn.Close()
	}
	return nil
}

func streamName(subject string) string {
	return "simlens-" + sanitizeName(subject)
}

// sanitizeName maps a subject onto the characters allowed in stream and
// consumer names: A-Z, a-z, 0-9, dash and underscore.
func sanitizeName(subject string) string {
	result := make([]byte, 0, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
