package pipeline

import (
	"sync"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Update is the outcome of applying one reading to a Session.
type Update struct {
	Raw        domain.Sample
	Changes    []domain.BandChange
	KnownCount int
}

// Session holds one city's stability state. Apply calls are serialized so
// the filter's in-place pending state is never shared between goroutines.
type Session struct {
	City domain.City

	mu         sync.RWMutex
	stabilizer *domain.Stabilizer
	reading    domain.Reading
	raw        domain.Sample
	updatedAt  time.Time
}

// NewSession creates an empty session; zero thresholds select the defaults.
// The forced-commit timeout is measured on clock.
func NewSession(city domain.City, minConsecutive int, maxWait time.Duration, clock clockwork.Clock) *Session {
	stabilizer := domain.NewStabilizer(minConsecutive, maxWait)
	stabilizer.Clock = clock
	return &Session{
		City:       city,
		stabilizer: stabilizer,
	}
}

// Apply classifies reading and folds it into the committed bands.
func (s *Session) Apply(reading domain.Reading, at time.Time) Update {
	raw := domain.ClassifyReading(reading)

	s.mu.Lock()
	defer s.mu.Unlock()

	changes := s.stabilizer.Apply(raw)
	s.reading = reading
	s.raw = raw
	s.updatedAt = at

	return Update{
		Raw:        raw.Clone(),
		Changes:    changes,
		KnownCount: domain.KnownCount(s.stabilizer.Committed()),
	}
}

// Snapshot returns the session's current state.
func (s *Session) Snapshot() domain.CitySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewCitySnapshot(s.City, s.reading, s.raw, s.stabilizer.Committed(), s.updatedAt)
}

// KnownCount reports how many committed indicators hold a known level.
func (s *Session) KnownCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.KnownCount(s.stabilizer.Committed())
}
