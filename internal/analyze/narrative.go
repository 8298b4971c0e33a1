package analyze

import "fmt"

// Role selects the audience-facing shape of a report.
type Role string

const (
	RoleClinician Role = "clinician"
	RolePatient   Role = "patient"
)

// Narrative is the plain-language layer over a report, phrased for the
// requested audience.
type Narrative struct {
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"keyInsights"`
	Recommendations []string `json:"recommendations"`
}

// BuildNarrative renders insight and recommendation text from the findings
// and advisories. Patient phrasing avoids clinical jargon; clinician
// phrasing mirrors the rule vocabulary.
func BuildNarrative(r Report, role Role) Narrative {
	n := Narrative{
		Summary: fmt.Sprintf("Analyzed %d %s readings (Quality: %s). Mean: %.1f mg/dL, TIR: %.1f%%",
			r.Quality.TotalReadings, r.Device, r.Quality.Reliability,
			r.Statistics.Mean, r.Statistics.TIR70To180),
	}

	patient := role == RolePatient
	for _, f := range r.Findings {
		switch f.Rule {
		case "postprandial_hyperglycemia":
			if patient {
				n.KeyInsights = append(n.KeyInsights, "Your glucose levels rise high after some meals")
				n.Recommendations = append(n.Recommendations, "Consider discussing meal timing with your healthcare team")
			} else {
				n.KeyInsights = append(n.KeyInsights, f.Description)
				n.Recommendations = append(n.Recommendations, "Evaluate postprandial glucose management")
			}
		case "mistimed_bolus":
			if patient {
				n.KeyInsights = append(n.KeyInsights, "Meal insulin is sometimes taken later than recommended")
				n.Recommendations = append(n.Recommendations, "Taking insulin before meals may reduce glucose spikes")
			} else {
				n.KeyInsights = append(n.KeyInsights, f.Description)
				n.Recommendations = append(n.Recommendations, "Reinforce pre-meal insulin timing education")
			}
		case "carb_ratio_mismatch":
			if patient {
				n.KeyInsights = append(n.KeyInsights, "Similar-sized meals repeatedly lead to high glucose despite insulin")
				n.Recommendations = append(n.Recommendations, "Ask your care team to review your insulin-to-carb ratio")
			} else {
				n.KeyInsights = append(n.KeyInsights, f.Description)
				n.Recommendations = append(n.Recommendations, "Reassess insulin-to-carb ratio settings")
			}
		}
	}

	for _, adv := range r.Advisories {
		if patient {
			continue // advisories carry clinical metric language
		}
		n.KeyInsights = append(n.KeyInsights, adv.Description)
		n.Recommendations = append(n.Recommendations, adv.Recommendation)
	}

	if len(n.KeyInsights) == 0 {
		if patient {
			n.KeyInsights = []string{"Your glucose patterns look relatively stable"}
			n.Recommendations = []string{"Keep up with your current diabetes management plan"}
		} else {
			n.KeyInsights = []string{"No rule-based patterns detected"}
			n.Recommendations = []string{"Continue current monitoring - patterns appear stable"}
		}
	}
	return n
}
