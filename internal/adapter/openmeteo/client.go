// Package openmeteo fetches current weather and air quality from the
// Open-Meteo forecast and air-quality APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/observability"
	"golang.org/x/time/rate"
)

const (
	sourceWeather = "weather"
	sourceAir     = "air"
)

// Client implements domain.WeatherProvider and domain.AirQualityProvider.
type Client struct {
	httpClient  *http.Client
	forecastURL string
	airURL      string
	limiter     *rate.Limiter
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates an Open-Meteo client. rps bounds outbound requests
// across both endpoints.
func NewClient(forecastURL, airURL string, timeout time.Duration, rps float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		forecastURL: forecastURL,
		airURL:      airURL,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		metrics:     metrics,
		logger:      logger,
	}
}

// Weather returns current conditions plus rainfall accumulations for the
// last 24 hours and 7 days. Units are pinned to °C and m/s.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	params := coordParams(lat, lon)
	params.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,wind_gusts_10m")
	params.Set("hourly", "precipitation,wind_speed_10m,wind_gusts_10m")
	params.Set("daily", "precipitation_sum")
	params.Set("past_days", "7")
	params.Set("forecast_days", "1")
	params.Set("temperature_unit", "celsius")
	params.Set("wind_speed_unit", "ms")
	params.Set("precipitation_unit", "mm")
	params.Set("timezone", "auto")

	var resp forecastResponse
	if err := c.get(ctx, sourceWeather, c.forecastURL+"?"+params.Encode(), &resp); err != nil {
		return domain.WeatherObservation{}, err
	}
	return resp.observation()
}

// AirQuality returns the latest hourly air-quality values. The index used is
// the last one present in every series.
func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (domain.AirObservation, error) {
	params := coordParams(lat, lon)
	params.Set("hourly", "us_aqi,pm2_5,nitrogen_dioxide,ozone")
	params.Set("past_days", "1")
	params.Set("timezone", "auto")

	var resp airResponse
	if err := c.get(ctx, sourceAir, c.airURL+"?"+params.Encode(), &resp); err != nil {
		return domain.AirObservation{}, err
	}
	return resp.observation(), nil
}

func (c *Client) get(ctx context.Context, source, fullURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("open-meteo %s error: status %d: %s", source, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("decode %s response: %w", source, err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	c.logger.Debug("open-meteo fetch", "source", source, "duration", time.Since(start))
	return nil
}

func coordParams(lat, lon float64) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', 4, 64)},
	}
}

// Open-Meteo API response types.

type forecastResponse struct {
	CurrentUnits struct {
		Temperature string `json:"temperature_2m"`
		WindSpeed   string `json:"wind_speed_10m"`
	} `json:"current_units"`
	Current struct {
		Temperature   domain.Number `json:"temperature_2m"`
		Humidity      domain.Number `json:"relative_humidity_2m"`
		Precipitation domain.Number `json:"precipitation"`
		WindSpeed     domain.Number `json:"wind_speed_10m"`
		WindGust      domain.Number `json:"wind_gusts_10m"`
	} `json:"current"`
	Hourly struct {
		Precipitation []domain.Number `json:"precipitation"`
		WindSpeed     []domain.Number `json:"wind_speed_10m"`
		WindGust      []domain.Number `json:"wind_gusts_10m"`
	} `json:"hourly"`
	Daily struct {
		PrecipitationSum []domain.Number `json:"precipitation_sum"`
	} `json:"daily"`
}

func (r forecastResponse) observation() (domain.WeatherObservation, error) {
	unit := r.CurrentUnits.Temperature
	if unit == "" {
		unit = string(domain.Celsius)
	}
	tempC, err := domain.CelsiusFrom(r.Current.Temperature, domain.TemperatureUnit(unit))
	if err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("weather temperature: %w", err)
	}

	toMs, err := windFactor(r.CurrentUnits.WindSpeed)
	if err != nil {
		return domain.WeatherObservation{}, err
	}

	gust := r.Current.WindGust
	if !gust.Valid && len(r.Hourly.WindGust) > 0 {
		gust = r.Hourly.WindGust[len(r.Hourly.WindGust)-1]
	}

	return domain.WeatherObservation{
		TempC:       tempC,
		RH:          r.Current.Humidity,
		WindSpeedMs: scale(r.Current.WindSpeed, toMs),
		WindGustMs:  scale(gust, toMs),
		Rain1h:      r.Current.Precipitation,
		Rain24h:     domain.SumLast(r.Hourly.Precipitation, 24),
		Rain7d:      domain.SumLast(r.Daily.PrecipitationSum, 7),
		VPD:         domain.VaporPressureDeficit(tempC, r.Current.Humidity),
	}, nil
}

func windFactor(unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "m/s", "ms":
		return 1, nil
	case "km/h", "kmh":
		return 1 / 3.6, nil
	case "mp/h", "mph":
		return 0.44704, nil
	case "kn", "knots":
		return 0.514444, nil
	default:
		return 0, fmt.Errorf("unknown wind speed unit %q", unit)
	}
}

func scale(n domain.Number, factor float64) domain.Number {
	if !n.Valid {
		return domain.Missing
	}
	return domain.Num(n.Value * factor)
}

type airResponse struct {
	Hourly struct {
		USAQI []domain.Number `json:"us_aqi"`
		PM25  []domain.Number `json:"pm2_5"`
		NO2   []domain.Number `json:"nitrogen_dioxide"`
		O3    []domain.Number `json:"ozone"`
	} `json:"hourly"`
}

func (r airResponse) observation() domain.AirObservation {
	series := [][]domain.Number{r.Hourly.USAQI, r.Hourly.PM25, r.Hourly.NO2, r.Hourly.O3}
	n := 0
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		if n == 0 || len(s) < n {
			n = len(s)
		}
	}
	if n == 0 {
		return domain.AirObservation{}
	}
	i := n - 1
	return domain.AirObservation{
		AQI:  at(r.Hourly.USAQI, i),
		PM25: at(r.Hourly.PM25, i),
		NO2:  at(r.Hourly.NO2, i),
		O3:   at(r.Hourly.O3, i),
	}
}

func at(s []domain.Number, i int) domain.Number {
	if i < 0 || i >= len(s) {
		return domain.Missing
	}
	return s[i]
}
