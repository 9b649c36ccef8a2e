package domain

import "time"

// Indicator is the key of one environmental indicator in a Sample.
type Indicator string

const (
	IndicatorAir         Indicator = "airInfo"
	IndicatorTemperature Indicator = "tempInfo"
	IndicatorHumidity    Indicator = "humidInfo"
	IndicatorWind        Indicator = "windInfo"
	IndicatorRain        Indicator = "rainInfo"
	IndicatorFlood       Indicator = "floodInfo"
	IndicatorFire        Indicator = "fireInfo"
	IndicatorLand        Indicator = "landInfo"
	IndicatorDrought     Indicator = "droughtInfo"
	IndicatorWater       Indicator = "waterInfo"
)

// Indicators lists every indicator in display order.
var Indicators = []Indicator{
	IndicatorRain,
	IndicatorAir,
	IndicatorFire,
	IndicatorFlood,
	IndicatorTemperature,
	IndicatorHumidity,
	IndicatorWind,
	IndicatorLand,
	IndicatorDrought,
	IndicatorWater,
}

// Sample maps indicator keys to their classification. The stability filter
// works for any key set, not only the ten above.
type Sample map[Indicator]RiskInfo

// Clone returns a shallow copy; RiskInfo is a value type so this is a deep copy.
func (s Sample) Clone() Sample {
	if s == nil {
		return nil
	}
	out := make(Sample, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// City is a monitored location.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Reading is one refresh worth of raw measurements for a city, already
// normalized to metric units (°C, %, m/s, mm, kPa, µg/m³).
type Reading struct {
	// Air
	AQI  Number `json:"aqi"`
	PM25 Number `json:"pm25"`
	NO2  Number `json:"no2"`
	O3   Number `json:"o3"`

	// Weather
	TempC            Number `json:"temp"`
	RH               Number `json:"rh"`
	Rain1h           Number `json:"rain1h"`
	Rain24h          Number `json:"rain24h"`
	Rain7d           Number `json:"rain7d"`
	FloodIntensity3h Number `json:"floodIntensity3h"`
	WindSpeedMs      Number `json:"windSpeedMs"`
	WindGustMs       Number `json:"windGustMs"`
	VPD              Number `json:"vpd"`

	// Fire
	FireEvents    Number `json:"fireEvents"`
	NearestFireKm Number `json:"nearestFireKm"`
	LastFireDate  string `json:"lastFireDate,omitempty"`

	// Water
	WaterIndexPct   Number `json:"waterIndexPct"`
	WaterLevelLabel string `json:"waterLevelLabel,omitempty"`

	ObservedAt time.Time `json:"observedAt,omitempty"`
}

// ClassifyReading computes the raw band for every indicator. A missing VPD is
// derived from temperature and humidity when both are present.
func ClassifyReading(r Reading) Sample {
	vpd := r.VPD
	if !vpd.Valid {
		vpd = VaporPressureDeficit(r.TempC, r.RH)
	}

	water := WaterLevel(r.WaterIndexPct)
	if !r.WaterIndexPct.Valid && r.WaterLevelLabel != "" {
		water = WaterLevelFromLabel(r.WaterLevelLabel)
	}

	return Sample{
		IndicatorAir:         AirQuality(r.AQI, r.PM25),
		IndicatorTemperature: Temperature(r.TempC),
		IndicatorHumidity:    Humidity(r.RH),
		IndicatorWind:        Wind(r.WindSpeedMs, r.WindGustMs),
		IndicatorRain:        Rain(r.Rain24h, r.Rain1h),
		IndicatorFlood:       Flood(r.Rain24h, r.FloodIntensity3h),
		IndicatorFire:        Fire(r.FireEvents, r.RH, vpd),
		IndicatorLand:        LandHealth(vpd, r.Rain7d),
		IndicatorDrought:     Drought(r.Rain7d, vpd),
		IndicatorWater:       water,
	}
}
