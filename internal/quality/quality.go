// Package quality implements the data-quality gate that decides whether a
// glucose stream is statistically sufficient to support clinical judgment.
// Rule evaluation must be skipped entirely when the verdict is not usable.
package quality

import (
	"fmt"
	"math"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

// Tier grades overall stream reliability.
type Tier string

const (
	TierHigh       Tier = "HIGH"
	TierModerate   Tier = "MODERATE"
	TierLow        Tier = "LOW"
	TierUnreliable Tier = "UNRELIABLE"
)

// Verdict is the gate's output. It has no persistent identity and is
// recomputed per call.
type Verdict struct {
	Score         int      `json:"qualityScore"`
	Reliability   Tier     `json:"reliability"`
	Warnings      []string `json:"warnings"`
	SpanHours     float64  `json:"dataSpanHours"`
	TotalReadings int      `json:"totalReadings"`
	Usable        bool     `json:"usableForClinicalDecisions"`
}

const (
	// assumedCadenceMin is the fallback sampling cadence when the stream
	// carries no usable timestamp range.
	assumedCadenceMin = 5.0

	minSpanHours     = 24.0
	minReadings      = 288 // one day at 5-minute cadence
	extremeLowMgDL   = 40.0
	extremeHighMgDL  = 400.0
	extremeFraction  = 0.05
	pointsPerIssue   = 15
	usableMinSpanHrs = 12.0
)

// Assess is a pure function of the glucose stream. It never fails: an empty
// stream maps to the UNRELIABLE, unusable verdict rather than an error.
//
// Score policy: each flagged condition appends one warning and deducts 15
// points from 100, clamped to [0, 100]. Conditions: span < 24h, fewer than
// 288 readings, >5% of readings below 40 mg/dL, >5% above 400 mg/dL.
func Assess(stream []model.GlucoseReading) Verdict {
	if len(stream) == 0 {
		return Verdict{
			Score:       0,
			Reliability: TierUnreliable,
			Warnings:    []string{"no valid glucose readings found"},
			Usable:      false,
		}
	}

	total := len(stream)
	span := spanHours(stream)

	var warnings []string
	issues := 0

	if span < minSpanHours {
		warnings = append(warnings, fmt.Sprintf("limited data span (%.1f hours) - insufficient for comprehensive analysis", span))
		issues++
	}
	if total < minReadings {
		warnings = append(warnings, "potential data gaps detected")
		issues++
	}

	var lows, highs int
	for _, r := range stream {
		if r.Value < extremeLowMgDL {
			lows++
		}
		if r.Value > extremeHighMgDL {
			highs++
		}
	}
	if float64(lows) > float64(total)*extremeFraction {
		warnings = append(warnings, fmt.Sprintf("high frequency of severe hypoglycemia (%d readings)", lows))
		issues++
	}
	if float64(highs) > float64(total)*extremeFraction {
		warnings = append(warnings, fmt.Sprintf("high frequency of severe hyperglycemia (%d readings)", highs))
		issues++
	}

	score := 100 - pointsPerIssue*issues
	if score < 0 {
		score = 0
	}

	var tier Tier
	switch {
	case score >= 80 && span >= minSpanHours:
		tier = TierHigh
	case score >= 60 && span >= usableMinSpanHrs:
		tier = TierModerate
	case score >= 40:
		tier = TierLow
	default:
		tier = TierUnreliable
	}

	return Verdict{
		Score:         score,
		Reliability:   tier,
		Warnings:      warnings,
		SpanHours:     round1(span),
		TotalReadings: total,
		Usable:        (tier == TierHigh || tier == TierModerate) && span >= usableMinSpanHrs,
	}
}

// spanHours prefers the stream's actual timestamp range. When the range is
// degenerate (single reading, or identical timestamps) it falls back to the
// assumed 5-minute cadence estimate.
func spanHours(stream []model.GlucoseReading) float64 {
	first, last := stream[0].Timestamp, stream[0].Timestamp
	for _, r := range stream[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	if span := last.Sub(first).Hours(); span > 0 {
		return span
	}
	return float64(len(stream)) * assumedCadenceMin / 60
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
