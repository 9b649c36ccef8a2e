package openmeteo

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/adapter/cache"
	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Freshness windows for cached upstream responses.
const (
	WeatherTTL = 5 * time.Minute
	AirTTL     = 10 * time.Minute
)

// CachedWeather wraps a WeatherProvider with a TTL+LRU cache keyed by
// coordinates rounded to three decimals.
type CachedWeather struct {
	inner   domain.WeatherProvider
	cache   *cache.Cache[domain.WeatherObservation]
	metrics *observability.Metrics
}

// NewCachedWeather creates a cache decorator around a weather provider.
func NewCachedWeather(inner domain.WeatherProvider, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedWeather {
	return &CachedWeather{
		inner:   inner,
		cache:   cache.New[domain.WeatherObservation](maxEntries, WeatherTTL, clock),
		metrics: metrics,
	}
}

func (c *CachedWeather) Weather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	key := coordKey(lat, lon)
	if obs, ok := c.cache.Get(key); ok {
		c.metrics.UpstreamCache.WithLabelValues(sourceWeather, "hit").Inc()
		return obs, nil
	}
	c.metrics.UpstreamCache.WithLabelValues(sourceWeather, "miss").Inc()

	obs, err := c.inner.Weather(ctx, lat, lon)
	if err != nil {
		return obs, err
	}
	c.cache.Put(key, obs)
	return obs, nil
}

// CachedAirQuality wraps an AirQualityProvider the same way.
type CachedAirQuality struct {
	inner   domain.AirQualityProvider
	cache   *cache.Cache[domain.AirObservation]
	metrics *observability.Metrics
}

// NewCachedAirQuality creates a cache decorator around an air-quality provider.
func NewCachedAirQuality(inner domain.AirQualityProvider, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedAirQuality {
	return &CachedAirQuality{
		inner:   inner,
		cache:   cache.New[domain.AirObservation](maxEntries, AirTTL, clock),
		metrics: metrics,
	}
}

func (c *CachedAirQuality) AirQuality(ctx context.Context, lat, lon float64) (domain.AirObservation, error) {
	key := coordKey(lat, lon)
	if obs, ok := c.cache.Get(key); ok {
		c.metrics.UpstreamCache.WithLabelValues(sourceAir, "hit").Inc()
		return obs, nil
	}
	c.metrics.UpstreamCache.WithLabelValues(sourceAir, "miss").Inc()

	obs, err := c.inner.AirQuality(ctx, lat, lon)
	if err != nil {
		return obs, err
	}
	c.cache.Put(key, obs)
	return obs, nil
}

func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}
