// Package monitoring tracks the health of the media cleanup pipeline.
package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
)

// Health levels reported by Monitor.Health
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Thresholds above which the pipeline is reported as unhealthy
const (
	MaxPendingAssets = 1000
	MaxDeadAssets    = 100
)

// Snapshot holds the last collected queue depths
type Snapshot struct {
	Pending     int       `json:"pending"`
	DeadLetter  int       `json:"dead_letter"`
	LastUpdated time.Time `json:"last_updated"`
	LastError   string    `json:"last_error,omitempty"`
}

// QueueProvider defines the interface for queue metrics
type QueueProvider interface {
	GetQueueDepth() (int, error)
	GetDLQDepth() (int, error)
}

// Monitor periodically samples the cleanup queues and exports them as gauges
type Monitor struct {
	queues   QueueProvider
	interval time.Duration
	logger   *logging.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewMonitor creates a monitor. A zero interval defaults to 10 seconds.
func NewMonitor(queues QueueProvider, interval time.Duration, logger *logging.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Monitor{queues: queues, interval: interval, logger: logger}
}

// Start collects once and then on every tick until ctx is done
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			if err := m.Collect(); err != nil {
				m.logger.WithError(err).Warn("Failed to collect queue metrics")
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Collect samples both queues once
func (m *Monitor) Collect() error {
	pending, err := m.queues.GetQueueDepth()
	if err != nil {
		return m.fail(fmt.Errorf("failed to get queue depth: %w", err))
	}
	dead, err := m.queues.GetDLQDepth()
	if err != nil {
		return m.fail(fmt.Errorf("failed to get DLQ depth: %w", err))
	}

	metrics.CleanupQueueDepth.Set(float64(pending))
	metrics.DeadLetterQueueDepth.Set(float64(dead))

	m.mu.Lock()
	m.snapshot = Snapshot{Pending: pending, DeadLetter: dead, LastUpdated: time.Now()}
	m.mu.Unlock()
	return nil
}

func (m *Monitor) fail(err error) error {
	m.mu.Lock()
	m.snapshot.LastError = err.Error()
	m.mu.Unlock()
	return err
}

// Snapshot returns the last collected values
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Health returns the overall pipeline health
func (m *Monitor) Health() string {
	s := m.Snapshot()
	switch {
	case s.DeadLetter > MaxDeadAssets:
		return StatusCritical
	case s.Pending > MaxPendingAssets, s.LastError != "":
		return StatusWarning
	}
	return StatusHealthy
}

// Alerts returns one message per threshold currently exceeded
func (m *Monitor) Alerts() []string {
	s := m.Snapshot()

	var alerts []string
	if s.DeadLetter > MaxDeadAssets {
		alerts = append(alerts, fmt.Sprintf("High DLQ depth: %d assets", s.DeadLetter))
	}
	if s.Pending > MaxPendingAssets {
		alerts = append(alerts, fmt.Sprintf("High queue depth: %d assets pending", s.Pending))
	}
	if s.LastError != "" {
		alerts = append(alerts, "Queue unreachable: "+s.LastError)
	}
	return alerts
}

// Check is a metrics.HealthFunc that fails while the pipeline is critical
func (m *Monitor) Check(ctx context.Context) error {
	if m.Health() == StatusCritical {
		return fmt.Errorf("media cleanup is %s: %v", StatusCritical, m.Alerts())
	}
	return nil
}
