// Package events carries run-completion notifications from the simulator
// launcher to the analysis server.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	// ErrAlreadySubscribed is returned when a bus already has a handler
	ErrAlreadySubscribed = errors.New("already subscribed")

	// ErrClosed is returned by operations on a closed bus
	ErrClosed = errors.New("bus closed")
)

// RunEvent announces that a simulation run finished and where its CSV is
type RunEvent struct {
	RunID   string    `json:"run_id"`
	CSVPath string    `json:"csv_path,omitempty"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// NewRunEvent creates an event with a fresh run ID stamped now
func NewRunEvent(csvPath, status string) RunEvent {
	return RunEvent{
		RunID:   uuid.NewString(),
		CSVPath: csvPath,
		Status:  status,
		At:      time.Now().UTC(),
	}
}

// Completed reports whether the run produced output worth analysing
func (e RunEvent) Completed() bool {
	return e.Status == StatusCompleted
}

// Handler processes one event. A non-nil error leaves the message for
// redelivery on backends that support it.
type Handler func(ctx context.Context, ev RunEvent) error

// Bus publishes and consumes RunEvents on one configured subject
type Bus interface {
	// Publish sends ev on the bus subject
	Publish(ctx context.Context, ev RunEvent) error

	// Subscribe starts delivering events to h until ctx is done or the bus
	// is closed. A bus accepts one handler.
	Subscribe(ctx context.Context, h Handler) error

	// Close releases connections and stops the subscription
	Close() error
}

func encode(ev RunEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run event: %w", err)
	}
	return data, nil
}

func decode(data []byte) (RunEvent, error) {
	var ev RunEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return RunEvent{}, fmt.Errorf("failed to decode run event: %w", err)
	}
	return ev, nil
}
