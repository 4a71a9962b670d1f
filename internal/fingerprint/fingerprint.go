// Package fingerprint computes the identity key used to match activities
// across providers without a shared identifier.
package fingerprint

import (
	"strings"
	"time"
)

// Key identifies a workout independently of which provider reported it.
// Two activities with equal keys are treated as the same workout.
type Key struct {
	Start    int64
	Duration int64
	Sport    string
}

// Tolerances control how coarsely start time and duration are bucketed
// before comparison. A zero tolerance means exact matching.
type Tolerances struct {
	Start    time.Duration
	Duration time.Duration
}

// Of builds the key for an activity. Start times are bucketed to the
// nearest start tolerance and durations to the nearest duration
// tolerance, which absorbs the small clock and rounding differences the
// two providers report for the same workout.
func Of(start time.Time, duration time.Duration, sport string, tol Tolerances) Key {
	return Key{
		Start:    start.UTC().Round(tol.Start).Unix(),
		Duration: int64(duration.Round(tol.Duration).Seconds()),
		Sport:    CanonicalSport(sport),
	}
}

// canonicalSports maps both providers' type vocabularies onto one sport
// namespace. Source types are CamelCase, destination type keys are
// lower_snake, so the two vocabularies never collide in this table.
var canonicalSports = map[string]string{
	// source vocabulary
	"Ride":        "cycling",
	"VirtualRide": "cycling",
	"EBikeRide":   "cycling",
	"Run":         "running",
	"VirtualRun":  "running",
	"TrailRun":    "running",
	"Swim":        "swimming",
	"Walk":        "walking",
	"Hike":        "hiking",
	"Workout":     "other",

	// destination vocabulary
	"cycling":             "cycling",
	"road_biking":         "cycling",
	"mountain_biking":     "cycling",
	"gravel_cycling":      "cycling",
	"indoor_cycling":      "cycling",
	"virtual_ride":        "cycling",
	"running":             "running",
	"street_running":      "running",
	"trail_running":       "running",
	"treadmill_running":   "running",
	"swimming":            "swimming",
	"lap_swimming":        "swimming",
	"open_water_swimming": "swimming",
	"walking":             "walking",
	"casual_walking":      "walking",
	"hiking":              "hiking",
	"other":               "other",
}

// CanonicalSport normalizes a raw provider type. Types outside the table
// normalize to their lowercased raw value so two distinct unknown types
// can never be mistaken for each other.
func CanonicalSport(raw string) string {
	if sport, ok := canonicalSports[raw]; ok {
		return sport
	}
	return strings.ToLower(raw)
}
