package rules

import (
	"fmt"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/correlate"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

// detectPostprandialHyperglycemia flags meals whose postprandial window
// contains a glucose maximum above the configured threshold. One occurrence
// per meal; severity follows the fraction of flagged meals.
func detectPostprandialHyperglycemia(b model.Bundle, th Thresholds) (*model.Finding, error) {
	var evidence []model.Evidence

	for _, meal := range b.Carbs {
		window := correlate.Window(meal.Timestamp, b.Glucose, 0, th.PostprandialWindowMin)
		if len(window) == 0 {
			continue
		}
		peak := peakReading(window)
		if peak.Value <= th.PostprandialGlucoseMgDL {
			continue
		}
		evidence = append(evidence, model.Evidence{
			"meal_time":         meal.Timestamp.Format(time.RFC3339),
			"max_glucose":       peak.Value,
			"carbs":             meal.Grams,
			"peak_time_minutes": int(correlate.MinutesBetween(meal.Timestamp, peak.Timestamp)),
		})
	}

	if len(evidence) == 0 {
		return nil, nil
	}

	return &model.Finding{
		Rule:     RulePostprandialHyperglycemia,
		Severity: frequencySeverity(len(evidence), len(b.Carbs), th.PostprandialHighFreq, th.PostprandialMediumFreq),
		Count:    len(evidence),
		Description: fmt.Sprintf("Found %d instances of postprandial hyperglycemia (>%.0f mg/dL)",
			len(evidence), th.PostprandialGlucoseMgDL),
		ClinicalSignificance: "May indicate need for meal insulin timing or dosing adjustment",
		Evidence:             evidence,
	}, nil
}

// peakReading returns the reading with the highest value; the first one wins
// on ties so minutes-to-peak stays deterministic.
func peakReading(window []model.GlucoseReading) model.GlucoseReading {
	peak := window[0]
	for _, r := range window[1:] {
		if r.Value > peak.Value {
			peak = r
		}
	}
	return peak
}
