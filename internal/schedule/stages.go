// Package schedule holds the pure scheduling core: parsing a profile's
// temperature stages and evaluating which stage (if any) is active at a
// given moment. Nothing in this package performs I/O.
package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"warmbed/internal/models"
)

const minutesPerDay = 24 * 60

// Default 3-stage levels: warm at bedtime, cooler once asleep, coolest
// before wake.
const (
	initialSleepLevel  = 22
	midStageSleepLevel = 20
	finalSleepLevel    = 18
)

// Offsets used when deriving the default stages from the sleep window.
const (
	midStageOffsetMin   = 60  // bedtime + 1h
	finalStageOffsetMin = 120 // wake - 2h
)

// Stage is the internal representation of a temperature stage with its
// time already converted to minutes since midnight.
type Stage struct {
	Minute int
	Level  int
	Name   string
}

// ParseClock converts "HH:MM" to minutes since midnight (0-1439).
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minute int) string {
	minute = ((minute % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// StagesFor resolves the stage list for a sleep window. A non-empty raw
// blob is parsed as a JSON array of temperature stages; if it is absent or
// fails to parse, the derived 3-stage default is returned instead. The
// returned error only reports why the fallback was taken; the stage list
// is always usable, so callers log the error as a warning and carry on.
func StagesFor(raw string, bedMin, wakeMin int) ([]Stage, error) {
	if raw == "" {
		return DefaultStages(bedMin, wakeMin), nil
	}
	stages, err := parseStages(raw)
	if err != nil {
		return DefaultStages(bedMin, wakeMin), fmt.Errorf("custom stages unusable, using defaults: %w", err)
	}
	return stages, nil
}

// DefaultStages derives the 3-point default schedule from the sleep window:
// bedtime, one hour into sleep, and two hours before wake. Times past
// midnight wrap around the 24h clock.
func DefaultStages(bedMin, wakeMin int) []Stage {
	mid := (bedMin + midStageOffsetMin) % minutesPerDay
	final := wakeMin - finalStageOffsetMin
	if final < 0 {
		final += minutesPerDay
	}
	return []Stage{
		{Minute: bedMin, Level: initialSleepLevel, Name: "bedtime"},
		{Minute: mid, Level: midStageSleepLevel, Name: "early sleep"},
		{Minute: final, Level: finalSleepLevel, Name: "pre-wake"},
	}
}

// parseStages decodes and validates a raw custom stage list, preserving
// input order.
func parseStages(raw string) ([]Stage, error) {
	var in []models.TemperatureStage
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("decode stage list: %w", err)
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("stage list is empty")
	}
	out := make([]Stage, 0, len(in))
	for i, st := range in {
		minute, err := ParseClock(st.Time)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		out = append(out, Stage{Minute: minute, Level: st.Temp, Name: st.Name})
	}
	return out, nil
}

// ViewStages converts the internal stage representation back to the
// wire/storage form.
func ViewStages(stages []Stage) []models.TemperatureStage {
	out := make([]models.TemperatureStage, 0, len(stages))
	for _, st := range stages {
		out = append(out, models.TemperatureStage{
			Time: FormatClock(st.Minute),
			Temp: st.Level,
			Name: st.Name,
		})
	}
	return out
}
