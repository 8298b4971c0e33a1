package model

import (
	"sort"
	"time"
)

// Bundle is one closed batch of normalized event streams handed to the
// analytics core. The core never mutates a bundle and never retains a
// reference to one beyond a single analysis call.
type Bundle struct {
	Glucose []GlucoseReading `json:"glucose"`
	Insulin []InsulinEvent   `json:"insulin"`
	Carbs   []CarbEvent      `json:"carbs"`
	Device  DeviceType       `json:"device"`
	Start   time.Time        `json:"start"`
	End     time.Time        `json:"end"`
}

// NewBundle sorts each stream by timestamp ascending and derives the
// declared [Start, End] range from the min/max timestamp across all three
// streams. An all-empty bundle is valid and keeps zero Start/End.
func NewBundle(glucose []GlucoseReading, insulin []InsulinEvent, carbs []CarbEvent, device DeviceType) Bundle {
	g := append([]GlucoseReading(nil), glucose...)
	i := append([]InsulinEvent(nil), insulin...)
	c := append([]CarbEvent(nil), carbs...)

	sort.SliceStable(g, func(a, b int) bool { return g[a].Timestamp.Before(g[b].Timestamp) })
	sort.SliceStable(i, func(a, b int) bool { return i[a].Timestamp.Before(i[b].Timestamp) })
	sort.SliceStable(c, func(a, b int) bool { return c[a].Timestamp.Before(c[b].Timestamp) })

	if device == "" {
		device = DeviceUnknown
	}
	b := Bundle{Glucose: g, Insulin: i, Carbs: c, Device: device}

	for _, ts := range bundleTimestamps(b) {
		if b.Start.IsZero() || ts.Before(b.Start) {
			b.Start = ts
		}
		if b.End.IsZero() || ts.After(b.End) {
			b.End = ts
		}
	}
	return b
}

// Empty reports whether the bundle carries no events at all.
func (b Bundle) Empty() bool {
	return len(b.Glucose) == 0 && len(b.Insulin) == 0 && len(b.Carbs) == 0
}

// SpanHours is the length of the declared time range in hours.
func (b Bundle) SpanHours() float64 {
	if b.Start.IsZero() || b.End.IsZero() {
		return 0
	}
	return b.End.Sub(b.Start).Hours()
}

func bundleTimestamps(b Bundle) []time.Time {
	out := make([]time.Time, 0, len(b.Glucose)+len(b.Insulin)+len(b.Carbs))
	for _, g := range b.Glucose {
		out = append(out, g.Timestamp)
	}
	for _, i := range b.Insulin {
		out = append(out, i.Timestamp)
	}
	for _, c := range b.Carbs {
		out = append(out, c.Timestamp)
	}
	return out
}
