package domain

import "time"

// CitySnapshot is the current state of one monitored city.
type CitySnapshot struct {
	City            City             `json:"city"`
	Reading         Reading          `json:"reading"`
	Raw             Sample           `json:"raw"`
	Committed       Sample           `json:"committed"`
	KnownCount      int              `json:"knownCount"`
	Ready           bool             `json:"ready"`
	Recommendations []Recommendation `json:"recommendations"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewCitySnapshot assembles a snapshot from the latest raw and committed bands.
func NewCitySnapshot(city City, reading Reading, raw, committed Sample, updatedAt time.Time) CitySnapshot {
	known := KnownCount(committed)
	return CitySnapshot{
		City:            city,
		Reading:         reading,
		Raw:             raw.Clone(),
		Committed:       committed.Clone(),
		KnownCount:      known,
		Ready:           known >= ReadyThreshold,
		Recommendations: Recommendations(raw, committed),
		UpdatedAt:       updatedAt,
	}
}

// BandUpdate is a committed band change for a city, as published downstream.
type BandUpdate struct {
	ID          string     `json:"id"`
	City        City       `json:"city"`
	Change      BandChange `json:"change"`
	CommittedAt time.Time  `json:"committedAt"`
}
