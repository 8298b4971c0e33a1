// Package variability computes closed-form glycemic-variability statistics
// over a glucose value sequence: CV, time-in-range bands, MAGE and estimated
// A1C. Results feed both the clinician report and rule severity context.
package variability

import "math"

// Metrics carries full-precision statistics. Use Rounded for presentation;
// threshold comparisons must run against the unrounded values.
type Metrics struct {
	Readings int     `json:"readings"`
	Mean     float64 `json:"meanGlucose"`
	StdDev   float64 `json:"stdDevGlucose"`
	Min      float64 `json:"minGlucose"`
	Max      float64 `json:"maxGlucose"`

	CV float64 `json:"cvPct"` // 100 * stdev / mean

	// Time-in-range bands, each a percentage of all readings.
	TIR70To180  float64 `json:"tir70_180"`
	TBRBelow70  float64 `json:"tbrBelow70"`
	TBRBelow54  float64 `json:"tbrBelow54"`
	TARAbove180 float64 `json:"tarAbove180"`
	TARAbove250 float64 `json:"tarAbove250"`

	MAGE         float64 `json:"mage"`
	EstimatedA1C float64 `json:"estimatedA1c"`
}

// Compute derives the metrics record from a glucose value sequence.
//
// Edge policies:
//   - Empty input returns the zero record.
//   - A single value yields mean/min/max and range bands; the variance-based
//     fields (StdDev, CV, MAGE) stay 0 instead of failing on n-1.
//   - Standard deviation is the sample deviation (n-1 denominator).
//   - MAGE is the mean of absolute consecutive deltas exceeding one standard
//     deviation, taken over interior points. A zero-deviation stream has zero
//     qualifying excursions, so MAGE is 0 for flat sequences.
//   - Estimated A1C uses the ADA linear approximation (mean + 46.7) / 28.7.
func Compute(values []float64) Metrics {
	if len(values) == 0 {
		return Metrics{}
	}

	m := Metrics{Readings: len(values), Min: values[0], Max: values[0]}
	var sum float64
	var inRange, below70, below54, above180, above250 int
	for _, v := range values {
		sum += v
		if v < m.Min {
			m.Min = v
		}
		if v > m.Max {
			m.Max = v
		}
		switch {
		case v < 70:
			below70++
			if v < 54 {
				below54++
			}
		case v > 180:
			above180++
			if v > 250 {
				above250++
			}
		default:
			inRange++
		}
	}

	n := float64(len(values))
	m.Mean = sum / n
	m.TIR70To180 = 100 * float64(inRange) / n
	m.TBRBelow70 = 100 * float64(below70) / n
	m.TBRBelow54 = 100 * float64(below54) / n
	m.TARAbove180 = 100 * float64(above180) / n
	m.TARAbove250 = 100 * float64(above250) / n
	m.EstimatedA1C = (m.Mean + 46.7) / 28.7

	if len(values) < 2 {
		return m
	}

	var sumSq float64
	for _, v := range values {
		d := v - m.Mean
		sumSq += d * d
	}
	m.StdDev = math.Sqrt(sumSq / (n - 1))
	if m.Mean != 0 {
		m.CV = 100 * m.StdDev / m.Mean
	}
	m.MAGE = mage(values, m.StdDev)
	return m
}

// mage averages absolute consecutive deltas that exceed stdev. The loop runs
// over interior points only (indices 1..n-2 against their predecessor),
// matching the established simplified-MAGE calculation. stdev == 0 is
// short-circuited: a flat stream reports no excursions.
func mage(values []float64, stdev float64) float64 {
	if stdev == 0 {
		return 0
	}
	var sum float64
	var count int
	for i := 1; i < len(values)-1; i++ {
		d := math.Abs(values[i] - values[i-1])
		if d > stdev {
			sum += d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Rounded returns a copy with every percentage, statistic and A1C value
// rounded to one decimal place for presentation.
func (m Metrics) Rounded() Metrics {
	r := m
	r.Mean = round1(m.Mean)
	r.StdDev = round1(m.StdDev)
	r.CV = round1(m.CV)
	r.TIR70To180 = round1(m.TIR70To180)
	r.TBRBelow70 = round1(m.TBRBelow70)
	r.TBRBelow54 = round1(m.TBRBelow54)
	r.TARAbove180 = round1(m.TARAbove180)
	r.TARAbove250 = round1(m.TARAbove250)
	r.MAGE = round1(m.MAGE)
	r.EstimatedA1C = round1(m.EstimatedA1C)
	return r
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
