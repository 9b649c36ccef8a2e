// Package domain classifies city environmental readings into risk bands and
// stabilizes those bands over time.
//
// # Data Sources
//
// Readings are assembled by the pipeline from public APIs:
//
//	Open-Meteo forecast     temperature (°C), relative humidity (%), wind speed
//	                        and gusts (m/s), hourly precipitation and daily
//	                        precipitation sums (mm).
//	Open-Meteo air quality  US AQI (0–500) and PM2.5 (µg/m³).
//	NASA FIRMS              24h active fire detections; counted within
//	                        FireSearchRadiusKm of the city.
//
// Units are pinned in the requests and, where a source reports another unit,
// converted explicitly (see [CelsiusFrom]). Classifiers assume metric input.
//
// # Missing Data
//
// Every classifier is total. A reading that is absent, non-numeric or
// non-finite is a missing [Number]; an indicator with no usable inputs is
// classified [LevelNA] ("Unknown"). No classifier returns an error.
//
// # Reference Thresholds
//
//	Air:      max(AQI, AQI(PM2.5)) ≤50 low | ≤100 medium | else high
//	Temp:     ≤12 °C low | ≤30 °C medium | else high
//	Humidity: ≤40 % low | ≤65 % medium | else high
//	Wind:     gust (else speed) ≤5 m/s low | ≤10 m/s medium | else high
//	Rain:     1h ≥10 or 24h ≥50 high | 1h ≥2 or 24h ≥10 medium | else low
//	Flood:    3h ≥30 or 24h ≥80 high | 3h ≥10 or 24h ≥30 medium | else low
//	Fire:     events 0 low | 1–4 medium | ≥5 high; without a count,
//	          VPD >2.2 or RH <25 high | VPD ≥1.2 or RH <35 medium | else low
//	Water:    index <30 low | <70 medium | else high
//
// Land health and drought combine VPD with 7-day rain; see [LandHealth] and
// [Drought].
//
// # Stabilization
//
// Raw bands are recomputed on every refresh and can flap when a reading sits
// near a threshold. [ConfirmPerKeyChange] only commits a changed level once it
// has been seen [MinConsecutive] times in a row, or once [MaxWait] has passed
// since the first observation. The very first sample commits immediately.
package domain
