package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/correlate"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

// pairedMeal is one carb event with its associated bolus and postprandial
// glucose maximum.
type pairedMeal struct {
	meal  model.CarbEvent
	bolus model.InsulinEvent
	peak  float64
}

// detectCarbRatioMismatch groups insulin-covered meals into fixed carb
// buckets and flags buckets where hyperglycemia repeats despite dosing.
// A bucket qualifies with at least CarbMinMeals total meals and CarbMinMeals
// problematic ones; the finding count sums problematic meals across
// qualifying buckets.
func detectCarbRatioMismatch(b model.Bundle, th Thresholds) (*model.Finding, error) {
	buckets := groupMealsByCarbs(b, th)

	// Deterministic bucket order for stable evidence output.
	labels := make([]string, 0, len(buckets))
	for l := range buckets {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var evidence []model.Evidence
	total := 0
	worstBucket := 0

	for _, label := range labels {
		meals := buckets[label]
		if len(meals) < th.CarbMinMeals {
			continue
		}

		var problematic []pairedMeal
		for _, pm := range meals {
			if pm.peak > th.PostprandialGlucoseMgDL {
				problematic = append(problematic, pm)
			}
		}
		if len(problematic) < th.CarbMinMeals {
			continue
		}

		if len(problematic) > worstBucket {
			worstBucket = len(problematic)
		}
		total += len(problematic)
		for _, pm := range problematic {
			ev := model.Evidence{
				"carb_range":    label,
				"meal_time":     pm.meal.Timestamp.Format(time.RFC3339),
				"carbs":         pm.meal.Grams,
				"insulin_units": pm.bolus.Units,
				"max_glucose":   pm.peak,
			}
			if pm.bolus.Units > 0 {
				ev["estimated_ratio"] = round1(pm.meal.Grams / pm.bolus.Units)
			} else {
				ev["estimated_ratio"] = nil
			}
			evidence = append(evidence, ev)
		}
	}

	if total == 0 {
		return nil, nil
	}

	severity := model.SeverityMedium
	if worstBucket >= th.CarbHighMealCount {
		severity = model.SeverityHigh
	}

	return &model.Finding{
		Rule:     RuleCarbRatioMismatch,
		Severity: severity,
		Count:    total,
		Description: fmt.Sprintf("Found %d meals with repeated hyperglycemia at similar carb sizes",
			total),
		ClinicalSignificance: "May indicate incorrect insulin-to-carb ratio requiring adjustment",
		Evidence:             evidence,
	}, nil
}

// groupMealsByCarbs pairs each meal with a bolus within ±CarbPairWindowMin
// minutes and its postprandial glucose peak, bucketed by CarbBucketGrams.
// Meals with no paired bolus are dropped from the analysis.
//
// The pairing takes the FIRST bolus inside the window in stream order, not
// the closest one. This mirrors long-standing behavior that downstream
// reporting depends on; switching to nearest-match would reshuffle historic
// ratio estimates.
func groupMealsByCarbs(b model.Bundle, th Thresholds) map[string][]pairedMeal {
	buckets := make(map[string][]pairedMeal)

	for _, meal := range b.Carbs {
		var bolus *model.InsulinEvent
		for _, ins := range correlate.Window(meal.Timestamp, b.Insulin, -th.CarbPairWindowMin, th.CarbPairWindowMin) {
			if ins.Kind == model.InsulinBolus {
				ins := ins
				bolus = &ins
				break
			}
		}
		if bolus == nil {
			continue
		}

		peak := 0.0
		if window := correlate.Window(meal.Timestamp, b.Glucose, 0, th.PostprandialWindowMin); len(window) > 0 {
			peak = peakReading(window).Value
		}

		label := bucketLabel(meal.Grams, th.CarbBucketGrams)
		buckets[label] = append(buckets[label], pairedMeal{meal: meal, bolus: *bolus, peak: peak})
	}
	return buckets
}

// bucketLabel renders the half-open carb bucket a meal falls in, e.g. 43g
// with 20g buckets becomes "40-59g".
func bucketLabel(grams, bucket float64) string {
	lo := int(grams/bucket) * int(bucket)
	return fmt.Sprintf("%d-%dg", lo, lo+int(bucket)-1)
}
