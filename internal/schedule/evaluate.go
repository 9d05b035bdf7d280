package schedule

import (
	"sort"
	"time"
)

// Evaluate returns the heating level the device should hold at the given
// moment, or active=false when the sleep window is not in effect. Only the
// time-of-day component of now is used.
//
// All comparisons happen on a single linear minute scale: an overnight
// window (wake earlier than bed) extends wake past 1440, an early-morning
// "now" that falls before both ends of the window is shifted into the next
// day, and any stage clocking in before bedtime is treated as belonging to
// the following morning. The function is pure; identical inputs always
// produce identical results.
func Evaluate(bedMin, wakeMin int, stages []Stage, now time.Time) (int, bool) {
	nowMin := now.Hour()*60 + now.Minute()

	wake := wakeMin
	if wake < bedMin {
		wake += minutesPerDay
	}
	if nowMin < bedMin && nowMin < wakeMin {
		nowMin += minutesPerDay
	}
	if nowMin < bedMin || nowMin >= wake {
		return 0, false
	}
	if len(stages) == 0 {
		return 0, false
	}

	// Rebase stages onto the same scale, keeping input order for ties:
	// with a stable sort, a later stage at the same minute overwrites an
	// earlier one below.
	rebased := make([]Stage, len(stages))
	copy(rebased, stages)
	for i := range rebased {
		if rebased[i].Minute < bedMin {
			rebased[i].Minute += minutesPerDay
		}
	}
	sort.SliceStable(rebased, func(i, j int) bool {
		return rebased[i].Minute < rebased[j].Minute
	})

	// Earliest stage is the safe default when now precedes every stage but
	// is still inside the window.
	level := rebased[0].Level
	for _, st := range rebased {
		if st.Minute <= nowMin {
			level = st.Level
		}
	}
	return level, true
}
