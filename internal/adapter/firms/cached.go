package firms

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/adapter/cache"
	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// TTL is how long a fire summary is reused. The feeds refresh a few times an hour.
const TTL = 30 * time.Minute

// Cached wraps a FireProvider with a TTL+LRU cache keyed by coordinates
// rounded to two decimals.
type Cached struct {
	inner   domain.FireProvider
	cache   *cache.Cache[domain.FireSummary]
	metrics *observability.Metrics
}

// NewCached creates a cache decorator around a fire provider.
func NewCached(inner domain.FireProvider, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *Cached {
	return &Cached{
		inner:   inner,
		cache:   cache.New[domain.FireSummary](maxEntries, TTL, clock),
		metrics: metrics,
	}
}

func (c *Cached) FiresNear(ctx context.Context, lat, lon float64) (domain.FireSummary, error) {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	if s, ok := c.cache.Get(key); ok {
		c.metrics.UpstreamCache.WithLabelValues(source, "hit").Inc()
		return s, nil
	}
	c.metrics.UpstreamCache.WithLabelValues(source, "miss").Inc()

	s, err := c.inner.FiresNear(ctx, lat, lon)
	if err != nil {
		return s, err
	}
	c.cache.Put(key, s)
	return s, nil
}
