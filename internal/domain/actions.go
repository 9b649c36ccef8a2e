package domain

// Recommendation pairs an indicator's band with the actions suggested for it.
type Recommendation struct {
	Indicator Indicator `json:"indicator"`
	Title     string    `json:"title"`
	Info      RiskInfo  `json:"info"`
	Actions   []string  `json:"actions"`
}

// Title returns the display heading for an indicator.
func Title(ind Indicator) string {
	switch ind {
	case IndicatorRain:
		return "Rain"
	case IndicatorAir:
		return "Air Quality"
	case IndicatorFire:
		return "Fire"
	case IndicatorFlood:
		return "Flood"
	case IndicatorTemperature:
		return "Heat/Temperature"
	case IndicatorHumidity:
		return "Humidity & Mold"
	case IndicatorWind:
		return "Wind & Comfort"
	case IndicatorLand:
		return "Land Health"
	case IndicatorDrought:
		return "Drought"
	case IndicatorWater:
		return "Water Level"
	default:
		return string(ind)
	}
}

// Actions returns the recommended actions for an indicator at a level.
// Unknown indicators and malformed levels get no actions.
func Actions(ind Indicator, level RiskLevel) []string {
	switch ind {
	case IndicatorRain:
		return rainActions(level)
	case IndicatorAir:
		return airActions(level)
	case IndicatorFire:
		return fireActions(level)
	case IndicatorFlood:
		return floodActions(level)
	case IndicatorTemperature:
		return heatActions(level)
	case IndicatorHumidity:
		return humidityActions(level)
	case IndicatorWind:
		return windActions(level)
	case IndicatorLand:
		return landActions(level)
	case IndicatorDrought:
		return droughtActions(level)
	case IndicatorWater:
		return waterActions(level)
	default:
		return nil
	}
}

func rainActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Routine drain desilting", "Culvert inspections", "No-garbage-in-drain messaging"}
	case LevelMedium:
		return []string{"Pre-position pumps & sandbags", "Clear chokepoints within 6h", "SMS waterlogging alerts"}
	case LevelHigh:
		return []string{"Deploy pumps; close underpasses", "Open shelters & evacuation routes", "Suspend school in affected zones"}
	case LevelNA:
		return nil
	}
	return nil
}

func airActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Maintain low-emission transport rules", "Routine ambient monitoring", "Enforce dust control at sites"}
	case LevelMedium:
		return []string{
			"Low Emission Zones near schools/hospitals",
			"Replace diesel gensets with solar+storage at municipal sites",
			"Real-time AQ displays; trees along traffic corridors",
		}
	case LevelHigh:
		return []string{
			"Health alert + mask distribution (N95)",
			"Restrict/highly regulate traffic in hotspots",
			"Suspend top-emitting industrial activity",
		}
	case LevelNA:
		return nil
	}
	return nil
}

func fireActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Community drills & hydrant mapping", "Maintain fire lanes", "Remove dead vegetation swiftly"}
	case LevelMedium:
		return []string{"Ban open burning during drought alerts", "Add watchtowers & signage", "Increase patrols/enforcement"}
	case LevelHigh:
		return []string{"Clear 30 m defensible space", "Stage water tankers & crews", "Emergency alerts & evacuation readiness"}
	case LevelNA:
		return nil
	}
	return nil
}

func floodActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Maintain/update flood maps", "Inspect levees/embankments", "Keep outfalls unobstructed"}
	case LevelMedium:
		return []string{"Protect wetlands; retention parks", "Pre-position barriers & mobile pumps", "Elevate power/telecom cabinets"}
	case LevelHigh:
		return []string{"Activate red-zone evacuation", "Close underpasses/low crossings", "24/7 EOC & shelters active"}
	case LevelNA:
		return nil
	}
	return nil
}

func heatActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Expand cool roofs & shade canopy", "Maintain heat early-warning systems", "Promote green courtyards"}
	case LevelMedium:
		return []string{"Shift outdoor work/school hours", "Open cooling centers at peak", "Hydration stations at markets & hubs"}
	case LevelHigh:
		return []string{"Activate heat emergency response", "Checks for vulnerable households", "24/7 cooling & misting in hotspots"}
	case LevelNA:
		return nil
	}
	return nil
}

func humidityActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Maintain ventilation systems", "Moisture guidance for households", "Track RH complaints dashboard"}
	case LevelMedium:
		return []string{"Moisture audits (schools/clinics)", "Dehumidifier subsidies for hotspots", "Repair roof/wall leaks quickly"}
	case LevelHigh:
		return []string{"Temporary relocation for severe cases", "Rapid mold remediation teams", "Ventilation retrofits in public housing"}
	case LevelNA:
		return nil
	}
	return nil
}

func windActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Plan ventilation corridors (prevailing wind)", "Shade trees on pedestrian spines", "Orient seating for comfort"}
	case LevelMedium:
		return []string{"Windbreak rows near plazas", "Shielded bus stops in gusty districts", "Adjust event layouts for wind flows"}
	case LevelHigh:
		return []string{"Temporarily close high-wind plazas", "Install temporary barriers/netting", "Postpone outdoor events if unsafe"}
	case LevelNA:
		return nil
	}
	return nil
}

func landActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Green vacant lots; micro-forests", "Mulch/compost for moisture retention", "Plant native resilient species"}
	case LevelMedium:
		return []string{"Erosion control on bare slopes", "Rainwater harvesting for parks", "Targeted soil remediation"}
	case LevelHigh:
		return []string{"Dust suppression & cover stockpiles", "Restrict earthworks in peak dust/wind", "Emergency replanting degraded plots"}
	case LevelNA:
		return nil
	}
	return nil
}

func droughtActions(level RiskLevel) []string {
	switch level {
	case LevelLow:
		return []string{"Leak detection & repairs", "Water-efficient fixtures incentives", "Recharge pit upkeep & audits"}
	case LevelMedium:
		return []string{"Odd-even non-essential use", "Greywater & drip irrigation incentives", "Tiered pricing to curb overuse"}
	case LevelHigh:
		return []string{"Ration non-essential supply", "Tankers to critical zones", "Rehab borewells & new sources"}
	case LevelNA:
		return nil
	}
	return nil
}

// Water level has no live source in most deployments, so NA still gets the
// baseline preparedness list.
func waterActions(level RiskLevel) []string {
	switch level {
	case LevelLow, LevelNA:
		return []string{"Integrate river/tide gauges to dashboard", "Maintain pumps & backup power", "Wayfinding for low-lying areas"}
	case LevelMedium:
		return []string{"Elevate power/telecom cabinets", "Pre-position barriers at outfalls", "Clear silt at key choke points"}
	case LevelHigh:
		return []string{"Activate evacuation routes & signage", "Close underpasses/low bridges", "Open shelters; coordinate relief"}
	}
	return nil
}

// Recommendations builds the action list for every indicator in display
// order. Air and wind follow the latest raw band; every other indicator uses
// the committed band.
func Recommendations(raw, committed Sample) []Recommendation {
	out := make([]Recommendation, 0, len(Indicators))
	for _, ind := range Indicators {
		info := pick(ind, raw, committed)
		out = append(out, Recommendation{
			Indicator: ind,
			Title:     Title(ind),
			Info:      info,
			Actions:   Actions(ind, info.Level),
		})
	}
	return out
}

func pick(ind Indicator, raw, committed Sample) RiskInfo {
	if ind == IndicatorAir {
		if info, ok := raw[ind]; ok && info.WellFormed() {
			return info
		}
		return Unknown
	}
	if ind == IndicatorWind {
		if info, ok := raw[ind]; ok && info.WellFormed() {
			return info
		}
	}
	if info, ok := committed[ind]; ok && info.WellFormed() {
		return info
	}
	return Unknown
}
