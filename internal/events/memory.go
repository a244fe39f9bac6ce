package events

import (
	"context"
	"fmt"
	"sync"
)

// memoryBufferSize bounds undelivered events on the in-process bus
const memoryBufferSize = 1024

// MemoryBus implements Bus with a buffered channel. It is the default when
// the launcher runs in the same process.
type MemoryBus struct {
	ch       chan []byte
	cancel   context.CancelFunc
	closed   bool
	mu       sync.Mutex
	handlers sync.WaitGroup
}

func newMemoryBus() *MemoryBus {
	return &MemoryBus{ch: make(chan []byte, memoryBufferSize)}
}

// Publish queues ev. It fails rather than blocks when the buffer is full.
func (b *MemoryBus) Publish(ctx context.Context, ev RunEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	select {
	case b.ch <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("memory bus full (%d pending)", len(b.ch))
	}
}

// Subscribe consumes events in a background goroutine
func (b *MemoryBus) Subscribe(ctx context.Context, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.cancel != nil {
		return ErrAlreadySubscribed
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.handlers.Add(1)
	go func() {
		defer b.handlers.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-b.ch:
				ev, err := decode(data)
				if err != nil {
					continue
				}
				// no redelivery in memory; the handler logs its own failures
				_ = h(ctx, ev)
			}
		}
	}()

	return nil
}

// Pending returns the number of queued events
func (b *MemoryBus) Pending() int {
	return len(b.ch)
}

// Close stops the subscriber and waits for it to return
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.handlers.Wait()
	return nil
}
