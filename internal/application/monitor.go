package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apascualco/fleetway/internal/domain"
)

type MonitorConfig struct {
	// Interval separates cycle starts, not cycle ends; drift under a slow
	// cycle is accepted.
	Interval time.Duration
	// StartupDelay postpones the first cycle so dependent services can
	// finish booting.
	StartupDelay time.Duration
	ProbeTimeout time.Duration
}

func (c *MonitorConfig) applyDefaults() {
	if c.Interval == 0 {
		c.Interval = 30 * time.Second
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 5 * time.Second
	}
}

// Monitor is the background health-check loop. One per process: it reads
// the full registry each cycle, probes every instance concurrently and
// routes status transitions back through the Registry.
type Monitor struct {
	config   MonitorConfig
	registry *Registry
	prober   *Prober

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewMonitor(cfg MonitorConfig, registry *Registry) *Monitor {
	cfg.applyDefaults()
	return &Monitor{
		config:   cfg,
		registry: registry,
		prober:   NewProber(cfg.ProbeTimeout),
	}
}

// Start launches the monitoring goroutine. Calling Start on a running
// monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		slog.Warn("health monitor is already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.loop(ctx)

	slog.Info("health monitor started",
		"interval", m.config.Interval.String(),
		"startup_delay", m.config.StartupDelay.String(),
	)
}

// Stop cancels the loop, including any in-flight probes and the
// inter-cycle sleep, and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
	slog.Info("health monitor stopped")
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	if m.config.StartupDelay > 0 {
		select {
		case <-time.After(m.config.StartupDelay):
		case <-ctx.Done():
			return
		}
	}

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	m.runCycle(ctx)
	for {
		select {
		case <-ticker.C:
			m.runCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runCycle probes every registered service and writes back only the
// transitions: steady-state cycles produce no store writes unless the
// last-known status was unknown.
func (m *Monitor) runCycle(ctx context.Context) {
	records, err := m.registry.List(ctx, "")
	if err != nil {
		slog.Error("health check cycle failed to list services", "error", err)
		return
	}
	if len(records) == 0 {
		slog.Debug("no services registered for health checking")
		return
	}

	slog.Debug("checking service health", "services", len(records))

	results := make([]domain.ProbeResult, len(records))
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec *domain.ServiceRecord) {
			defer wg.Done()
			results[i] = m.prober.Check(ctx, rec)
		}(i, rec)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return
	}

	for i, rec := range records {
		verdict := results[i].Status()
		if rec.Status == verdict && rec.Status != domain.StatusUnknown {
			continue
		}
		if _, err := m.registry.UpdateHealth(ctx, rec.ServiceName, verdict, &results[i].ResponseTimeMs); err != nil {
			// Lost update, corrected on the next cycle.
			slog.Error("failed to record health transition",
				"service", rec.ServiceName,
				"status", string(verdict),
				"error", err,
			)
			continue
		}
		slog.Info("health transition",
			"service", rec.ServiceName,
			"from", string(rec.Status),
			"to", string(verdict),
			"response_time_ms", results[i].ResponseTimeMs,
		)
	}
}
