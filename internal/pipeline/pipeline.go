package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Collector gathers the current raw measurements for a city.
type Collector interface {
	Collect(ctx context.Context, city domain.City) (domain.Reading, error)
}

// Publisher delivers committed band changes downstream.
type Publisher interface {
	Publish(ctx context.Context, updates []domain.BandUpdate) error
}

// Discard is a Publisher that drops every update.
type Discard struct{}

func (Discard) Publish(context.Context, []domain.BandUpdate) error { return nil }

// Options tunes a Monitor. Zero values select the defaults.
type Options struct {
	RefreshInterval time.Duration
	MinConsecutive  int
	MaxWait         time.Duration
	Clock           clockwork.Clock
}

// Monitor runs the collect-classify-stabilize-publish loop for a fixed set of cities.
type Monitor struct {
	collector Collector
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration

	cities   []domain.City
	sessions map[string]*Session
}

// New creates a Monitor with one Session per city.
func New(cities []domain.City, c Collector, p Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Monitor {
	if p == nil {
		p = Discard{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Minute
	}
	m := &Monitor{
		collector: c,
		publisher: p,
		logger:    logger,
		metrics:   metrics,
		clock:     opts.Clock,
		interval:  opts.RefreshInterval,
		cities:    cities,
		sessions:  make(map[string]*Session, len(cities)),
	}
	for _, city := range cities {
		m.sessions[cityKey(city.Name)] = NewSession(city, opts.MinConsecutive, opts.MaxWait, opts.Clock)
	}
	return m
}

// Cities returns the monitored cities in configuration order.
func (m *Monitor) Cities() []domain.City {
	out := make([]domain.City, len(m.cities))
	copy(out, m.cities)
	return out
}

// Snapshot returns the current state of the named city (case-insensitive).
func (m *Monitor) Snapshot(name string) (domain.CitySnapshot, bool) {
	s, ok := m.sessions[cityKey(name)]
	if !ok {
		return domain.CitySnapshot{}, false
	}
	return s.Snapshot(), true
}

// CheckReadiness returns nil once every city has enough known indicators to
// leave the loading state, or an error naming the cities still loading.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	var loading []string
	for _, city := range m.cities {
		if m.sessions[cityKey(city.Name)].KnownCount() < domain.ReadyThreshold {
			loading = append(loading, city.Name)
		}
	}
	if len(loading) > 0 {
		return fmt.Errorf("cities still loading: %s", strings.Join(loading, ", "))
	}
	return nil
}

// Run refreshes every city immediately and then once per interval until the
// context is cancelled. A cycle in which every city fails is retried with
// exponential backoff instead of waiting for the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "cities", len(m.cities), "interval", m.interval)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	backoff := initialBackoff
	for {
		if err := m.RefreshAll(ctx); err != nil {
			if ctx.Err() != nil {
				m.logger.Info("monitor stopping", "reason", ctx.Err())
				return nil
			}
			m.logger.Error("refresh cycle failed", "error", err, "retry_in", backoff)
			if !m.sleep(ctx, backoff) {
				m.logger.Info("monitor stopping", "reason", ctx.Err())
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RefreshAll runs one cycle over every city. It returns an error only when
// no city could be refreshed.
func (m *Monitor) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, city := range m.cities {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := m.refreshCity(ctx, m.sessions[cityKey(city.Name)]); err != nil {
			m.logger.Warn("city refresh failed", "city", city.Name, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 && len(errs) == len(m.cities) {
		return errors.Join(errs...)
	}
	return nil
}

func (m *Monitor) refreshCity(ctx context.Context, s *Session) error {
	start := m.clock.Now()

	reading, err := m.collector.Collect(ctx, s.City)
	if err != nil {
		m.metrics.RefreshErrors.Inc()
		return fmt.Errorf("collect %s: %w", s.City.Name, err)
	}
	m.metrics.ReadingsCollected.Inc()

	now := m.clock.Now()
	upd := s.Apply(reading, now)
	m.metrics.KnownIndicators.WithLabelValues(s.City.Name).Set(float64(upd.KnownCount))

	if len(upd.Changes) > 0 {
		updates := make([]domain.BandUpdate, 0, len(upd.Changes))
		for _, ch := range upd.Changes {
			m.metrics.BandChanges.WithLabelValues(string(ch.Indicator), string(ch.To.Level)).Inc()
			m.logger.Info("band committed",
				"city", s.City.Name,
				"indicator", ch.Indicator,
				"from", ch.From.Level,
				"to", ch.To.Level,
			)
			updates = append(updates, domain.BandUpdate{
				ID:          uuid.NewString(),
				City:        s.City,
				Change:      ch,
				CommittedAt: now,
			})
		}
		if err := m.publisher.Publish(ctx, updates); err != nil {
			m.metrics.PublishErrors.Inc()
			m.logger.Error("publish band changes failed", "city", s.City.Name, "count", len(updates), "error", err)
		}
	}

	m.metrics.RefreshDuration.Observe(m.clock.Since(start).Seconds())
	return nil
}

func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := m.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func cityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
