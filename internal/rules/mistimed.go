package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/correlate"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

// detectMistimedBolus flags boluses delivered more than the configured delay
// after a meal and followed by a glucose spike. Each delayed bolus with a
// qualifying spike is its own occurrence; severity follows the fraction of
// occurrences over total meals.
func detectMistimedBolus(b model.Bundle, th Thresholds) (*model.Finding, error) {
	var evidence []model.Evidence

	for _, meal := range b.Carbs {
		for _, bolus := range correlate.Window(meal.Timestamp, b.Insulin, 0, th.MistimedSearchMin) {
			if bolus.Kind != model.InsulinBolus {
				continue
			}
			delay := correlate.MinutesBetween(meal.Timestamp, bolus.Timestamp)
			if delay <= th.MistimedDelayMin {
				continue
			}

			window := correlate.Window(bolus.Timestamp, b.Glucose, 0, th.PostprandialWindowMin)
			if len(window) == 0 {
				continue
			}
			peak := peakReading(window)
			if peak.Value <= th.MistimedGlucoseMgDL {
				continue
			}
			evidence = append(evidence, model.Evidence{
				"meal_time":     meal.Timestamp.Format(time.RFC3339),
				"bolus_time":    bolus.Timestamp.Format(time.RFC3339),
				"delay_minutes": round1(delay),
				"max_glucose":   peak.Value,
				"carbs":         meal.Grams,
				"insulin_units": bolus.Units,
			})
		}
	}

	if len(evidence) == 0 {
		return nil, nil
	}

	return &model.Finding{
		Rule:     RuleMistimedBolus,
		Severity: frequencySeverity(len(evidence), len(b.Carbs), th.MistimedHighFreq, th.MistimedMediumFreq),
		Count:    len(evidence),
		Description: fmt.Sprintf("Found %d instances of delayed meal insulin with glucose spikes",
			len(evidence)),
		ClinicalSignificance: "Suggests need for pre-meal insulin timing education",
		Evidence:             evidence,
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
