package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel is the band an indicator falls into. NA is a distinct "unknown"
// state and is not ordered against the other levels.
type RiskLevel string

const (
	LevelLow    RiskLevel = "low"
	LevelMedium RiskLevel = "medium"
	LevelHigh   RiskLevel = "high"
	LevelNA     RiskLevel = "na"
)

// Color tokens for the reference palette.
const (
	ColorLow    = "#10b981"
	ColorMedium = "#f59e0b"
	ColorHigh   = "#ef4444"
	ColorNA     = "#6b7280"
)

// Valid reports whether l is one of the four known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelNA:
		return true
	default:
		return false
	}
}

// Known reports whether l carries an actual classification (not NA, not malformed).
func (l RiskLevel) Known() bool {
	return l.Valid() && l != LevelNA
}

// ParseRiskLevel accepts the canonical names in any case, plus the
// "moderate" alias some providers use for medium.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LevelLow, nil
	case "medium", "moderate":
		return LevelMedium, nil
	case "high":
		return LevelHigh, nil
	case "na", "n/a", "unknown":
		return LevelNA, nil
	default:
		return "", fmt.Errorf("invalid risk level: %q", s)
	}
}

// RiskInfo is the classification of one indicator. Label and Color are
// derived from Level; two infos are the same band iff their levels match.
type RiskInfo struct {
	Level RiskLevel `json:"level"`
	Label string    `json:"label"`
	Color string    `json:"color"`
}

// Unknown is the RiskInfo returned when inputs are missing or unusable.
var Unknown = Info(LevelNA)

// Info builds the RiskInfo for a level. Anything outside the four known
// levels is treated as NA.
func Info(level RiskLevel) RiskInfo {
	switch level {
	case LevelLow:
		return RiskInfo{Level: LevelLow, Label: "Low", Color: ColorLow}
	case LevelMedium:
		return RiskInfo{Level: LevelMedium, Label: "Medium", Color: ColorMedium}
	case LevelHigh:
		return RiskInfo{Level: LevelHigh, Label: "High", Color: ColorHigh}
	default:
		return RiskInfo{Level: LevelNA, Label: "Unknown", Color: ColorNA}
	}
}

// WellFormed reports whether the info carries a recognized level.
func (r RiskInfo) WellFormed() bool {
	return r.Level.Valid()
}

// SameBand compares two infos by level only. Malformed infos never match.
func (r RiskInfo) SameBand(other RiskInfo) bool {
	return r.WellFormed() && other.WellFormed() && r.Level == other.Level
}

// UnmarshalJSON tolerates payloads that only carry a level and fills in the
// derived label and color. A missing or unrecognized level decodes to the
// zero RiskInfo, which the stability filter treats as malformed.
func (r *RiskInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode risk info: %w", err)
	}
	level, err := ParseRiskLevel(raw.Level)
	if err != nil {
		*r = RiskInfo{}
		return nil
	}
	*r = Info(level)
	return nil
}
