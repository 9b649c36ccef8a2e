package domain

import "context"

// WeatherObservation is the weather slice of a Reading.
type WeatherObservation struct {
	TempC       Number
	RH          Number
	WindSpeedMs Number
	WindGustMs  Number
	Rain1h      Number
	Rain24h     Number
	Rain7d      Number
	VPD         Number
}

// AirObservation is the air-quality slice of a Reading.
type AirObservation struct {
	AQI  Number
	PM25 Number
	NO2  Number
	O3   Number
}

// FireSummary describes active fire detections near a city.
type FireSummary struct {
	Count     int
	NearestKm Number
	LastDate  string
}

// WeatherProvider fetches current weather for a coordinate.
type WeatherProvider interface {
	Weather(ctx context.Context, lat, lon float64) (WeatherObservation, error)
}

// AirQualityProvider fetches current air quality for a coordinate.
type AirQualityProvider interface {
	AirQuality(ctx context.Context, lat, lon float64) (AirObservation, error)
}

// FireProvider summarizes active fires around a coordinate.
type FireProvider interface {
	FiresNear(ctx context.Context, lat, lon float64) (FireSummary, error)
}
