package analyze

import (
	"fmt"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/variability"
)

// Advisory is a metric-threshold observation derived from the variability
// statistics, complementing the event-correlation findings. Thresholds
// follow the ADA/EASD consensus targets.
type Advisory struct {
	Type           string         `json:"type"`
	Severity       model.Severity `json:"severity"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation"`
	Metric         string         `json:"metric"`
	Target         string         `json:"target"`
	Actual         string         `json:"actual"`
}

// adviseOnMetrics evaluates consensus targets against the full-precision
// metrics. Band thresholds pair a high-severity cutoff with a medium one;
// only the worse of the two fires.
func adviseOnMetrics(m variability.Metrics) []Advisory {
	var out []Advisory

	switch {
	case m.TIR70To180 < 50:
		out = append(out, Advisory{
			Type:           "Poor Glycemic Control",
			Severity:       model.SeverityHigh,
			Description:    fmt.Sprintf("Time in Range only %.1f%% (Target: >70%%)", m.TIR70To180),
			Recommendation: "Comprehensive diabetes management review needed",
			Metric:         "Time in Range",
			Target:         ">70%",
			Actual:         fmt.Sprintf("%.1f%%", m.TIR70To180),
		})
	case m.TIR70To180 < 70:
		out = append(out, Advisory{
			Type:           "Suboptimal Glycemic Control",
			Severity:       model.SeverityMedium,
			Description:    fmt.Sprintf("Time in Range %.1f%% (Target: >70%%)", m.TIR70To180),
			Recommendation: "Consider therapy adjustment to improve TIR",
			Metric:         "Time in Range",
			Target:         ">70%",
			Actual:         fmt.Sprintf("%.1f%%", m.TIR70To180),
		})
	}

	switch {
	case m.TBRBelow54 > 1:
		out = append(out, Advisory{
			Type:           "Severe Hypoglycemia Risk",
			Severity:       model.SeverityHigh,
			Description:    fmt.Sprintf("Time below 54 mg/dL: %.1f%% (Target: <1%%)", m.TBRBelow54),
			Recommendation: "Immediate hypoglycemia prevention protocol needed",
			Metric:         "TBR <54 mg/dL",
			Target:         "<1%",
			Actual:         fmt.Sprintf("%.1f%%", m.TBRBelow54),
		})
	case m.TBRBelow70 > 4:
		out = append(out, Advisory{
			Type:           "Hypoglycemia Risk",
			Severity:       model.SeverityMedium,
			Description:    fmt.Sprintf("Time below 70 mg/dL: %.1f%% (Target: <4%%)", m.TBRBelow70),
			Recommendation: "Review hypoglycemia prevention strategies",
			Metric:         "TBR <70 mg/dL",
			Target:         "<4%",
			Actual:         fmt.Sprintf("%.1f%%", m.TBRBelow70),
		})
	}

	switch {
	case m.TARAbove250 > 5:
		out = append(out, Advisory{
			Type:           "Severe Hyperglycemia",
			Severity:       model.SeverityHigh,
			Description:    fmt.Sprintf("Time above 250 mg/dL: %.1f%% (Target: <5%%)", m.TARAbove250),
			Recommendation: "Urgent hyperglycemia management required",
			Metric:         "TAR >250 mg/dL",
			Target:         "<5%",
			Actual:         fmt.Sprintf("%.1f%%", m.TARAbove250),
		})
	case m.TARAbove180 > 25:
		out = append(out, Advisory{
			Type:           "Hyperglycemia Pattern",
			Severity:       model.SeverityMedium,
			Description:    fmt.Sprintf("Time above 180 mg/dL: %.1f%% (Target: <25%%)", m.TARAbove180),
			Recommendation: "Consider intensification of diabetes therapy",
			Metric:         "TAR >180 mg/dL",
			Target:         "<25%",
			Actual:         fmt.Sprintf("%.1f%%", m.TARAbove180),
		})
	}

	if m.CV > 36 {
		out = append(out, Advisory{
			Type:           "High Glycemic Variability",
			Severity:       model.SeverityMedium,
			Description:    fmt.Sprintf("Coefficient of Variation: %.1f%% (Target: <36%%)", m.CV),
			Recommendation: "Focus on reducing glucose variability through consistent carb counting and timing",
			Metric:         "Glucose CV",
			Target:         "<36%",
			Actual:         fmt.Sprintf("%.1f%%", m.CV),
		})
	}

	if m.MAGE > 60 {
		out = append(out, Advisory{
			Type:           "Large Glycemic Excursions",
			Severity:       model.SeverityMedium,
			Description:    fmt.Sprintf("Mean Amplitude of Glycemic Excursions: %.1f mg/dL", m.MAGE),
			Recommendation: "Review post-prandial glucose management and insulin timing",
			Metric:         "MAGE",
			Target:         "<60 mg/dL",
			Actual:         fmt.Sprintf("%.1f mg/dL", m.MAGE),
		})
	}

	return out
}
