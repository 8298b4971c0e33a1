// Package correlate provides the windowed-join primitive shared by every
// clinical rule: selecting the events of one stream that fall inside a time
// window anchored on an event of another stream.
package correlate

import "time"

// Timestamped is satisfied by every event type in the model package.
type Timestamped interface {
	When() time.Time
}

// Window returns the events of target whose timestamp t satisfies
// anchor+afterMin <= t <= anchor+beforeMin, both bounds inclusive, in the
// target stream's original order. Offsets are minutes and may be negative.
// No event is skipped or deduplicated; an empty result is nil.
func Window[T Timestamped](anchor time.Time, target []T, afterMin, beforeMin int) []T {
	lo := anchor.Add(time.Duration(afterMin) * time.Minute)
	hi := anchor.Add(time.Duration(beforeMin) * time.Minute)

	var out []T
	for _, ev := range target {
		ts := ev.When()
		if ts.Before(lo) || ts.After(hi) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// MinutesBetween is the signed offset from anchor to ts in whole-precision
// minutes, as a float to keep sub-minute offsets exact.
func MinutesBetween(anchor, ts time.Time) float64 {
	return ts.Sub(anchor).Minutes()
}
