package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// LiveCollector implements Collector by querying the weather, air-quality and
// fire providers concurrently. A failed source leaves its fields missing.
type LiveCollector struct {
	weather domain.WeatherProvider
	air     domain.AirQualityProvider
	fires   domain.FireProvider
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewLiveCollector creates a LiveCollector. Any provider may be nil, in which
// case its fields are always missing.
func NewLiveCollector(weather domain.WeatherProvider, air domain.AirQualityProvider, fires domain.FireProvider, clock clockwork.Clock, logger *slog.Logger) *LiveCollector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LiveCollector{
		weather: weather,
		air:     air,
		fires:   fires,
		clock:   clock,
		logger:  logger,
	}
}

var errNoProvider = errors.New("provider not configured")

// Collect returns a Reading for city. It only fails when every source fails.
func (c *LiveCollector) Collect(ctx context.Context, city domain.City) (domain.Reading, error) {
	var (
		g                errgroup.Group
		weather          domain.WeatherObservation
		air              domain.AirObservation
		fires            domain.FireSummary
		wErr, aErr, fErr error
	)

	g.Go(func() error {
		if c.weather == nil {
			wErr = errNoProvider
			return nil
		}
		weather, wErr = c.weather.Weather(ctx, city.Lat, city.Lon)
		return nil
	})
	g.Go(func() error {
		if c.air == nil {
			aErr = errNoProvider
			return nil
		}
		air, aErr = c.air.AirQuality(ctx, city.Lat, city.Lon)
		return nil
	})
	g.Go(func() error {
		if c.fires == nil {
			fErr = errNoProvider
			return nil
		}
		fires, fErr = c.fires.FiresNear(ctx, city.Lat, city.Lon)
		return nil
	})
	_ = g.Wait()

	if wErr != nil && aErr != nil && fErr != nil {
		return domain.Reading{}, fmt.Errorf("all sources failed for %s: %w", city.Name, errors.Join(wErr, aErr, fErr))
	}

	reading := domain.Reading{ObservedAt: c.clock.Now()}
	if wErr == nil {
		reading.TempC = weather.TempC
		reading.RH = weather.RH
		reading.WindSpeedMs = weather.WindSpeedMs
		reading.WindGustMs = weather.WindGustMs
		reading.Rain1h = weather.Rain1h
		reading.Rain24h = weather.Rain24h
		reading.Rain7d = weather.Rain7d
		reading.VPD = weather.VPD
	} else {
		c.logger.Warn("weather unavailable", "city", city.Name, "error", wErr)
	}
	if aErr == nil {
		reading.AQI = air.AQI
		reading.PM25 = air.PM25
		reading.NO2 = air.NO2
		reading.O3 = air.O3
	} else {
		c.logger.Warn("air quality unavailable", "city", city.Name, "error", aErr)
	}
	if fErr == nil {
		reading.FireEvents = domain.Num(float64(fires.Count))
		reading.NearestFireKm = fires.NearestKm
		reading.LastFireDate = fires.LastDate
	} else {
		c.logger.Warn("fire data unavailable", "city", city.Name, "error", fErr)
	}
	return reading, nil
}
