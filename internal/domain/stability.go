package domain

import (
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// MinConsecutive is how many consecutive observations a changed level
	// needs before it replaces the committed level.
	MinConsecutive = 2
	// MaxWait forces a pending change through once this much time has passed
	// since the shared first observation.
	MaxWait = 30 * time.Second
	// ReadyThreshold is the number of known indicators needed to leave the
	// loading state.
	ReadyThreshold = 3
)

// PendingState is the stability filter's working memory. It is created on
// the first sample and mutated in place by every later call.
type PendingState struct {
	Infos           Sample            `json:"infos"`
	Counts          map[Indicator]int `json:"counts"`
	FirstObservedAt time.Time         `json:"firstObservedAt"`
}

func newPendingState(now time.Time) *PendingState {
	return &PendingState{
		Infos:           Sample{},
		Counts:          map[Indicator]int{},
		FirstObservedAt: now,
	}
}

// ConfirmPerKeyChange folds next into the committed bands. A key's committed
// level only changes after the new level has been seen minConsecutive times
// in a row, or once maxWait has elapsed since pending.FirstObservedAt.
// A sample that returns to the committed level resets that key's counter.
//
// Zero or negative minConsecutive and maxWait select MinConsecutive and
// MaxWait. The returned committed map is a fresh copy; the returned pending
// state is lastPending itself (or a new one on bootstrap). Calls for the same
// state must be serialized by the caller.
func ConfirmPerKeyChange(lastAccepted Sample, lastPending *PendingState, next Sample, minConsecutive int, maxWait time.Duration) (Sample, *PendingState) {
	return ConfirmPerKeyChangeAt(clock.Now(), lastAccepted, lastPending, next, minConsecutive, maxWait)
}

// ConfirmPerKeyChangeAt is ConfirmPerKeyChange evaluated at now instead of
// the package clock.
func ConfirmPerKeyChangeAt(now time.Time, lastAccepted Sample, lastPending *PendingState, next Sample, minConsecutive int, maxWait time.Duration) (Sample, *PendingState) {
	if minConsecutive <= 0 {
		minConsecutive = MinConsecutive
	}
	if maxWait <= 0 {
		maxWait = MaxWait
	}

	if lastAccepted == nil && lastPending == nil {
		committed := make(Sample, len(next))
		pending := newPendingState(now)
		for key, info := range next {
			pending.Counts[key] = 1
			if !info.WellFormed() {
				continue
			}
			committed[key] = info
			pending.Infos[key] = info
		}
		return committed, pending
	}

	committed := lastAccepted.Clone()
	if committed == nil {
		committed = Sample{}
	}
	pending := lastPending
	if pending == nil {
		pending = newPendingState(now)
	}
	if pending.Infos == nil {
		pending.Infos = Sample{}
	}
	if pending.Counts == nil {
		pending.Counts = map[Indicator]int{}
	}

	for key, info := range next {
		if !info.WellFormed() {
			pending.Counts[key] = 1
			continue
		}

		prev, ok := committed[key]
		if !ok || !prev.WellFormed() {
			committed[key] = info
			pending.Infos[key] = info
			pending.Counts[key] = 1
			continue
		}

		if info.SameBand(prev) {
			pending.Infos[key] = info
			pending.Counts[key] = 1
			continue
		}

		if info.SameBand(pending.Infos[key]) {
			pending.Counts[key] = max(pending.Counts[key], 1) + 1
		} else {
			pending.Infos[key] = info
			pending.Counts[key] = 1
		}

		if pending.Counts[key] >= minConsecutive || now.Sub(pending.FirstObservedAt) >= maxWait {
			committed[key] = info
			pending.Counts[key] = 1
		}
	}

	return committed, pending
}

// KnownCount counts the keys holding a real (non-NA, well-formed) level.
func KnownCount(s Sample) int {
	n := 0
	for _, info := range s {
		if info.Level.Known() {
			n++
		}
	}
	return n
}

// BandChange records one committed level transition.
type BandChange struct {
	Indicator Indicator `json:"indicator"`
	From      RiskInfo  `json:"from"`
	To        RiskInfo  `json:"to"`
}

// DiffCommitted lists the keys whose committed band differs between before
// and after, sorted by indicator for stable output.
func DiffCommitted(before, after Sample) []BandChange {
	var changes []BandChange
	for key, to := range after {
		from, ok := before[key]
		if ok && from.SameBand(to) {
			continue
		}
		changes = append(changes, BandChange{Indicator: key, From: from, To: to})
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Indicator < changes[j].Indicator
	})
	return changes
}

// Stabilizer threads committed and pending state through successive calls
// to ConfirmPerKeyChange. It is not safe for concurrent use.
type Stabilizer struct {
	MinConsecutive int
	MaxWait        time.Duration
	// Clock times the forced commit. Nil uses the package clock.
	Clock clockwork.Clock

	committed Sample
	pending   *PendingState
}

// NewStabilizer returns a Stabilizer with the given thresholds; zero values
// select the defaults.
func NewStabilizer(minConsecutive int, maxWait time.Duration) *Stabilizer {
	return &Stabilizer{MinConsecutive: minConsecutive, MaxWait: maxWait}
}

// Apply feeds one raw sample and returns the changes it committed.
func (s *Stabilizer) Apply(next Sample) []BandChange {
	before := s.committed
	now := clock.Now()
	if s.Clock != nil {
		now = s.Clock.Now()
	}
	s.committed, s.pending = ConfirmPerKeyChangeAt(now, s.committed, s.pending, next, s.MinConsecutive, s.MaxWait)
	return DiffCommitted(before, s.committed)
}

// Committed returns a copy of the committed bands.
func (s *Stabilizer) Committed() Sample {
	return s.committed.Clone()
}

// Pending exposes the working state, mainly for diagnostics.
func (s *Stabilizer) Pending() *PendingState {
	return s.pending
}
