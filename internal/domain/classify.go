package domain

import "math"

// pm25Breakpoint is one row of the US EPA 24-hour PM2.5 AQI table.
type pm25Breakpoint struct {
	concLo, concHi float64
	aqiLo, aqiHi   float64
}

// pm25Breakpoints maps truncated µg/m³ concentrations to AQI 0–500.
var pm25Breakpoints = [...]pm25Breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// PM25ToAQI converts a PM2.5 concentration to its US AQI equivalent.
// Concentrations are truncated to 0.1 µg/m³ as the EPA method prescribes,
// negatives clamp to 0 and anything above the top breakpoint clamps to 500.
// NaN and infinite inputs have no AQI and yield NaN.
func PM25ToAQI(pm25 float64) float64 {
	if math.IsNaN(pm25) || math.IsInf(pm25, 0) {
		return math.NaN()
	}
	if pm25 <= 0 {
		return 0
	}
	c := math.Floor(pm25*10+1e-9) / 10
	for _, bp := range pm25Breakpoints {
		if c <= bp.concHi {
			if c < bp.concLo {
				c = bp.concLo
			}
			aqi := (bp.aqiHi-bp.aqiLo)/(bp.concHi-bp.concLo)*(c-bp.concLo) + bp.aqiLo
			return math.Round(aqi)
		}
	}
	return 500
}

// AirQuality classifies air quality from a direct AQI and an optional PM2.5
// reading. When both are present the worse of the two wins, so a good index
// cannot hide a bad particulate reading.
func AirQuality(aqi, pm25 Number) RiskInfo {
	effective := aqi
	if pm25.Valid {
		derived := Num(PM25ToAQI(pm25.Value))
		if !effective.Valid || derived.Value > effective.Value {
			effective = derived
		}
	}
	switch {
	case !effective.Valid:
		return Unknown
	case effective.Value <= 50:
		return Info(LevelLow)
	case effective.Value <= 100:
		return Info(LevelMedium)
	default:
		return Info(LevelHigh)
	}
}

// Temperature classifies an air temperature in °C. Callers must normalize
// units first; see CelsiusFrom.
func Temperature(celsius Number) RiskInfo {
	switch {
	case !celsius.Valid:
		return Unknown
	case celsius.Value <= 12:
		return Info(LevelLow)
	case celsius.Value <= 30:
		return Info(LevelMedium)
	default:
		return Info(LevelHigh)
	}
}

// Humidity classifies relative humidity in percent.
func Humidity(rh Number) RiskInfo {
	switch {
	case !rh.Valid:
		return Unknown
	case rh.Value <= 40:
		return Info(LevelLow)
	case rh.Value <= 65:
		return Info(LevelMedium)
	default:
		return Info(LevelHigh)
	}
}

// Wind classifies wind in m/s, preferring the gust over the sustained speed.
func Wind(speed, gust Number) RiskInfo {
	v := speed
	if gust.Valid {
		v = gust
	}
	switch {
	case !v.Valid:
		return Unknown
	case v.Value <= 5:
		return Info(LevelLow)
	case v.Value <= 10:
		return Info(LevelMedium)
	default:
		return Info(LevelHigh)
	}
}

// Rain classifies precipitation totals in mm. A single missing total counts
// as zero; both missing is NA.
func Rain(last24h, last1h Number) RiskInfo {
	if !last24h.Valid && !last1h.Valid {
		return Unknown
	}
	day, hour := last24h.Or(0), last1h.Or(0)
	switch {
	case hour >= 10 || day >= 50:
		return Info(LevelHigh)
	case hour >= 2 || day >= 10:
		return Info(LevelMedium)
	default:
		return Info(LevelLow)
	}
}

// Flood classifies flood risk from the 24h total and 3h intensity in mm.
func Flood(last24h, intensity3h Number) RiskInfo {
	if !last24h.Valid && !intensity3h.Valid {
		return Unknown
	}
	day, burst := last24h.Or(0), intensity3h.Or(0)
	switch {
	case burst >= 30 || day >= 80:
		return Info(LevelHigh)
	case burst >= 10 || day >= 30:
		return Info(LevelMedium)
	default:
		return Info(LevelLow)
	}
}

// Fire classifies wildfire risk. The active event count within the search
// radius decides when present; otherwise dryness (RH and VPD) is used.
func Fire(activeEvents, rh, vpd Number) RiskInfo {
	if activeEvents.Valid {
		switch {
		case activeEvents.Value <= 0:
			return Info(LevelLow)
		case activeEvents.Value < 5:
			return Info(LevelMedium)
		default:
			return Info(LevelHigh)
		}
	}
	switch {
	case !rh.Valid && !vpd.Valid:
		return Unknown
	case vpd.GT(2.2) || rh.LT(25):
		return Info(LevelHigh)
	case vpd.GE(1.2) || rh.LT(35):
		return Info(LevelMedium)
	default:
		return Info(LevelLow)
	}
}

// LandHealth classifies vegetation stress from VPD (kPa) and 7-day rain (mm).
func LandHealth(vpd, rain7d Number) RiskInfo {
	switch {
	case !vpd.Valid && !rain7d.Valid:
		return Unknown
	case vpd.GE(2.0) || (rain7d.LE(1) && vpd.GE(1.6)):
		return Info(LevelHigh)
	case rain7d.GE(10) && vpd.LT(1.2):
		return Info(LevelLow)
	case vpd.GE(1.0) || rain7d.LE(5):
		return Info(LevelMedium)
	default:
		return Info(LevelLow)
	}
}

// Drought classifies drought risk from 7-day rain (mm) and VPD (kPa).
func Drought(rain7d, vpd Number) RiskInfo {
	switch {
	case !rain7d.Valid && !vpd.Valid:
		return Unknown
	case (rain7d.LE(2) && vpd.GE(2.0)) || (rain7d.EQ(0) && vpd.GE(1.6)):
		return Info(LevelHigh)
	case rain7d.LE(10) || (vpd.GE(1.2) && vpd.LT(2.0)):
		return Info(LevelMedium)
	default:
		return Info(LevelLow)
	}
}

// WaterLevel classifies a gauge reading or percentage index. There is no
// reliable live source, so most callers will get NA.
func WaterLevel(index Number) RiskInfo {
	switch {
	case !index.Valid:
		return Unknown
	case index.Value < 30:
		return Info(LevelLow)
	case index.Value < 70:
		return Info(LevelMedium)
	default:
		return Info(LevelHigh)
	}
}

// WaterLevelFromLabel maps a provider-supplied band label ("low",
// "moderate", "high") when no numeric index is available.
func WaterLevelFromLabel(label string) RiskInfo {
	level, err := ParseRiskLevel(label)
	if err != nil {
		return Unknown
	}
	return Info(level)
}
