// Package timeseries converts raw silo sensor readings into downsampled,
// period-aware series suitable for charting.
package timeseries

import (
	"sort"
	"time"
)

// Reading is a single sensor observation reported by a silo device.
// Field names on the wire follow the gateway's API.
type Reading struct {
	DeviceID    string    `json:"dispositivo"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatura"`
	Humidity    float64   `json:"umidade"`
}

// Alert thresholds for grain storage. Readings beyond either limit are
// surfaced in the critical-alerts table.
const (
	CriticalTemperature = 30.0 // °C
	CriticalHumidity    = 80.0 // percent
)

// IsCritical reports whether the reading exceeds either alert threshold.
func (r Reading) IsCritical() bool {
	return r.Temperature > CriticalTemperature || r.Humidity > CriticalHumidity
}

// CriticalReadings filters readings down to those beyond the alert
// thresholds, newest first, capped at limit. A limit <= 0 means no cap.
func CriticalReadings(readings []Reading, limit int) []Reading {
	var critical []Reading
	for _, r := range readings {
		if r.IsCritical() {
			critical = append(critical, r)
		}
	}

	sort.Slice(critical, func(i, j int) bool {
		return critical[i].Timestamp.After(critical[j].Timestamp)
	})

	if limit > 0 && len(critical) > limit {
		critical = critical[:limit]
	}
	return critical
}
