package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSources struct {
	weather    domain.WeatherObservation
	air        domain.AirObservation
	fires      domain.FireSummary
	weatherErr error
	airErr     error
	fireErr    error
}

func (s stubSources) Weather(context.Context, float64, float64) (domain.WeatherObservation, error) {
	return s.weather, s.weatherErr
}

func (s stubSources) AirQuality(context.Context, float64, float64) (domain.AirObservation, error) {
	return s.air, s.airErr
}

func (s stubSources) FiresNear(context.Context, float64, float64) (domain.FireSummary, error) {
	return s.fires, s.fireErr
}

func TestLiveCollector_MergesSources(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2025, time.March, 24, 6, 0, 0, 0, time.UTC))
	src := stubSources{
		weather: domain.WeatherObservation{TempC: domain.Num(31), RH: domain.Num(70), Rain24h: domain.Num(12)},
		air:     domain.AirObservation{AQI: domain.Num(88), PM25: domain.Num(30)},
		fires:   domain.FireSummary{Count: 3, NearestKm: domain.Num(42), LastDate: "2025-03-23"},
	}
	c := pipeline.NewLiveCollector(src, src, src, fc, discardLogger())

	r, err := c.Collect(context.Background(), dhaka)
	require.NoError(t, err)

	assert.Equal(t, domain.Num(31), r.TempC)
	assert.Equal(t, domain.Num(12), r.Rain24h)
	assert.Equal(t, domain.Num(88), r.AQI)
	assert.Equal(t, domain.Num(3), r.FireEvents)
	assert.Equal(t, domain.Num(42), r.NearestFireKm)
	assert.Equal(t, "2025-03-23", r.LastFireDate)
	assert.Equal(t, fc.Now(), r.ObservedAt)
}

func TestLiveCollector_DegradesPerSource(t *testing.T) {
	src := stubSources{
		air:        domain.AirObservation{AQI: domain.Num(55)},
		weatherErr: errors.New("weather down"),
		fireErr:    errors.New("firms down"),
	}
	c := pipeline.NewLiveCollector(src, src, src, nil, discardLogger())

	r, err := c.Collect(context.Background(), dhaka)
	require.NoError(t, err)

	assert.Equal(t, domain.Num(55), r.AQI)
	assert.False(t, r.TempC.Valid)
	assert.False(t, r.FireEvents.Valid, "fire failure leaves the count missing")
}

func TestLiveCollector_AllSourcesFail(t *testing.T) {
	boom := errors.New("network unreachable")
	src := stubSources{weatherErr: boom, airErr: boom, fireErr: boom}
	c := pipeline.NewLiveCollector(src, src, src, nil, discardLogger())

	_, err := c.Collect(context.Background(), dhaka)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Dhaka")
}

func TestLiveCollector_NilProviders(t *testing.T) {
	src := stubSources{weather: domain.WeatherObservation{TempC: domain.Num(20)}}
	c := pipeline.NewLiveCollector(src, nil, nil, nil, discardLogger())

	r, err := c.Collect(context.Background(), dhaka)
	require.NoError(t, err)
	assert.Equal(t, domain.Num(20), r.TempC)
	assert.False(t, r.AQI.Valid)
}
