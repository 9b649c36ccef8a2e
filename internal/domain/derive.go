package domain

import (
	"fmt"
	"math"
	"strings"
)

// FireSearchRadiusKm bounds the fire detections counted toward a city.
const FireSearchRadiusKm = 250.0

const earthRadiusKm = 6371.0

// VaporPressureDeficit estimates VPD in kPa from air temperature (°C) and
// relative humidity (%) with the Tetens saturation formula, rounded to 0.01.
// It is an illustrative proxy, not a validated agronomic model.
func VaporPressureDeficit(celsius, rh Number) Number {
	if !celsius.Valid || !rh.Valid {
		return Missing
	}
	es := 0.6108 * math.Exp((17.27*celsius.Value)/(celsius.Value+237.3))
	vpd := es * (1 - rh.Value/100)
	return Num(math.Round(vpd*100) / 100)
}

// HaversineKm returns the great-circle distance between two WGS-84 points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// TemperatureUnit names the unit a temperature reading was reported in.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
	Kelvin     TemperatureUnit = "K"
)

// CelsiusFrom converts a reading in the declared unit to °C. The unit must be
// stated by the source; magnitudes are never used to guess it.
func CelsiusFrom(v Number, unit TemperatureUnit) (Number, error) {
	if !v.Valid {
		return Missing, nil
	}
	switch TemperatureUnit(strings.ToUpper(strings.TrimSpace(string(unit)))) {
	case Celsius, "CELSIUS", "°C":
		return v, nil
	case Fahrenheit, "FAHRENHEIT", "°F":
		return Num((v.Value - 32) * 5 / 9), nil
	case Kelvin, "KELVIN":
		return Num(v.Value - 273.15), nil
	default:
		return Missing, fmt.Errorf("unknown temperature unit %q", unit)
	}
}

// SumLast adds the final n finite values of a series; non-finite entries
// count as zero. A nil or empty series yields Missing.
func SumLast(series []Number, n int) Number {
	if len(series) == 0 || n <= 0 {
		return Missing
	}
	start := len(series) - n
	if start < 0 {
		start = 0
	}
	total := 0.0
	for _, v := range series[start:] {
		total += v.Or(0)
	}
	return Num(total)
}
