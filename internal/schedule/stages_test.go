package schedule

import (
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"07:30", 450, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(1410); got != "23:30" {
		t.Fatalf("FormatClock(1410) = %q, want 23:30", got)
	}
	// Rebased values past midnight wrap back onto the clock.
	if got := FormatClock(1440 + 90); got != "01:30" {
		t.Fatalf("FormatClock(1530) = %q, want 01:30", got)
	}
}

func TestDefaultStages_Derivation(t *testing.T) {
	bed := mustClock(t, "22:30")
	wake := mustClock(t, "06:30")

	stages := DefaultStages(bed, wake)
	if len(stages) != 3 {
		t.Fatalf("expected 3 default stages, got %d", len(stages))
	}
	if stages[0].Minute != bed || stages[0].Level != initialSleepLevel {
		t.Fatalf("stage 1 = %+v, want bedtime at level %d", stages[0], initialSleepLevel)
	}
	if got := FormatClock(stages[1].Minute); got != "23:30" {
		t.Fatalf("stage 2 time = %s, want 23:30", got)
	}
	if stages[1].Level != midStageSleepLevel {
		t.Fatalf("stage 2 level = %d, want %d", stages[1].Level, midStageSleepLevel)
	}
	if got := FormatClock(stages[2].Minute); got != "04:30" {
		t.Fatalf("stage 3 time = %s, want 04:30", got)
	}
	if stages[2].Level != finalSleepLevel {
		t.Fatalf("stage 3 level = %d, want %d", stages[2].Level, finalSleepLevel)
	}
}

func TestDefaultStages_WrapsAroundMidnight(t *testing.T) {
	// Bedtime 23:30 pushes the mid stage past midnight; wake 01:00 pulls the
	// final stage below zero.
	stages := DefaultStages(mustClock(t, "23:30"), mustClock(t, "01:00"))
	if got := FormatClock(stages[1].Minute); got != "00:30" {
		t.Fatalf("mid stage = %s, want 00:30", got)
	}
	if got := FormatClock(stages[2].Minute); got != "23:00" {
		t.Fatalf("final stage = %s, want 23:00", got)
	}
}

func TestStagesFor_CustomList(t *testing.T) {
	raw := `[{"time":"23:00","temp":20,"name":"bedtime"},{"time":"05:00","temp":18}]`
	stages, err := StagesFor(raw, mustClock(t, "23:00"), mustClock(t, "07:00"))
	if err != nil {
		t.Fatalf("unexpected fallback: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].Minute != mustClock(t, "23:00") || stages[0].Level != 20 || stages[0].Name != "bedtime" {
		t.Fatalf("stage 0 = %+v", stages[0])
	}
	if stages[1].Minute != mustClock(t, "05:00") || stages[1].Level != 18 {
		t.Fatalf("stage 1 = %+v", stages[1])
	}
}

func TestStagesFor_EmptyBlobUsesDefaults(t *testing.T) {
	stages, err := StagesFor("", mustClock(t, "22:00"), mustClock(t, "06:00"))
	if err != nil {
		t.Fatalf("empty blob must not report fallback: %v", err)
	}
	if len(stages) != 3 {
		t.Fatalf("expected default 3 stages, got %d", len(stages))
	}
}

func TestStagesFor_MalformedBlobFallsBack(t *testing.T) {
	for _, raw := range []string{
		"not json",
		"[]",
		`[{"time":"25:00","temp":20}]`,
		`{"time":"23:00","temp":20}`,
	} {
		stages, err := StagesFor(raw, mustClock(t, "22:00"), mustClock(t, "06:00"))
		if err == nil {
			t.Errorf("raw %q: expected fallback error", raw)
		}
		if len(stages) != 3 {
			t.Errorf("raw %q: expected default stages, got %d", raw, len(stages))
		}
	}
}

func TestViewStages_RoundTrip(t *testing.T) {
	in := []Stage{{Minute: mustClock(t, "23:15"), Level: 19, Name: "wind down"}}
	out := ViewStages(in)
	if len(out) != 1 || out[0].Time != "23:15" || out[0].Temp != 19 || out[0].Name != "wind down" {
		t.Fatalf("unexpected view: %+v", out)
	}
}
