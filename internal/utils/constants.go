package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second

	// ReloadTimeout bounds a single dataset reload triggered by a watcher or event
	ReloadTimeout = 15 * time.Second
)

// Source Timeouts
const (
	// DefaultWaitTimeout is how long to wait for the simulator's CSV to appear
	DefaultWaitTimeout = 5 * time.Second

	// DefaultPollInterval is the interval between existence checks while waiting
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultRefreshInterval is the dashboard refresh cadence
	DefaultRefreshInterval = 5 * time.Second

	// WatchDebounce coalesces bursts of write events on the CSV
	WatchDebounce = 200 * time.Millisecond
)

// =============================================================================
// Analysis Defaults
// =============================================================================

const (
	// DefaultMovingAverageWindow is the trailing window used for smoothing
	DefaultMovingAverageWindow = 5

	// DefaultHistogramBins is the bin count used when none is requested
	DefaultHistogramBins = 10

	// DefaultCriticalThreshold is the normalized slope change for peaks/valleys
	DefaultCriticalThreshold = 0.2

	// DefaultConfidence is the confidence level for the mean interval
	DefaultConfidence = 0.95

	// DefaultDownsampleThreshold is the point count above which series are thinned
	DefaultDownsampleThreshold = 1000
)

// =============================================================================
// Dataset Column Names
// =============================================================================

const (
	// DateColumn holds the simulator's wall-clock date (DD/MM/YYYY)
	DateColumn = "internalCurrentDate"

	// DateLayout is the layout of DateColumn as written by the simulator
	DateLayout = "02/01/2006"

	// NormalizedDateLayout is the layout DateColumn is rewritten into
	NormalizedDateLayout = "2006-01-02"

	// AgentColumn identifies the agent that produced a row
	AgentColumn = "Agent"
)

// =============================================================================
// Events Type Constants
// =============================================================================

// EventsType represents the type of run-completion event bus
type EventsType string

const (
	// EventsTypeMemory represents the in-process bus (default)
	EventsTypeMemory EventsType = "memory"

	// EventsTypeNATS represents NATS JetStream
	EventsTypeNATS EventsType = "nats"

	// EventsTypeRedis represents Redis Streams
	EventsTypeRedis EventsType = "redis"

	// EventsTypeKafka represents Apache Kafka
	EventsTypeKafka EventsType = "kafka"
)
