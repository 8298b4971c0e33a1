package rules

// Thresholds gathers every clinical cutoff used by the rules so they are
// tunable and testable independently of the correlation logic.
type Thresholds struct {
	// R1 postprandial hyperglycemia.
	PostprandialGlucoseMgDL float64 `yaml:"postprandial_glucose_mg_dl"`
	PostprandialWindowMin   int     `yaml:"postprandial_window_min"`
	PostprandialHighFreq    float64 `yaml:"postprandial_high_freq"`
	PostprandialMediumFreq  float64 `yaml:"postprandial_medium_freq"`

	// R2 mistimed bolus.
	MistimedGlucoseMgDL float64 `yaml:"mistimed_glucose_mg_dl"`
	MistimedDelayMin    float64 `yaml:"mistimed_delay_min"`
	MistimedSearchMin   int     `yaml:"mistimed_search_min"`
	MistimedHighFreq    float64 `yaml:"mistimed_high_freq"`
	MistimedMediumFreq  float64 `yaml:"mistimed_medium_freq"`

	// R3 carb-ratio mismatch.
	CarbBucketGrams   float64 `yaml:"carb_bucket_grams"`
	CarbPairWindowMin int     `yaml:"carb_pair_window_min"`
	CarbMinMeals      int     `yaml:"carb_min_meals"`
	CarbHighMealCount int     `yaml:"carb_high_meal_count"`
}

// DefaultThresholds returns the clinically established defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PostprandialGlucoseMgDL: 180,
		PostprandialWindowMin:   120,
		PostprandialHighFreq:    0.5,
		PostprandialMediumFreq:  0.3,

		MistimedGlucoseMgDL: 160,
		MistimedDelayMin:    10,
		MistimedSearchMin:   60,
		MistimedHighFreq:    0.3,
		MistimedMediumFreq:  0.2,

		CarbBucketGrams:   20,
		CarbPairWindowMin: 30,
		CarbMinMeals:      3,
		CarbHighMealCount: 5,
	}
}
