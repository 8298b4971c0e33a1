// Package analyze orchestrates one analysis pass: quality gate first, then
// variability metrics, then the clinical rules. Every call is a pure
// function of its bundle; nothing is cached or shared between calls.
package analyze

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/quality"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/rules"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/variability"
)

// Disclaimer accompanies every report verbatim.
const Disclaimer = "This analysis is for informational purposes only. All clinical decisions " +
	"should be made in consultation with healthcare providers."

// Report is the full outcome of one analysis call. When the quality verdict
// is unusable the findings, statistics and advisories stay empty and the
// verdict's warnings are the only actionable content.
type Report struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Device      model.DeviceType    `json:"device"`
	Quality     quality.Verdict     `json:"dataQuality"`
	Statistics  variability.Metrics `json:"statistics"`
	Findings    []model.Finding     `json:"findings"`
	Advisories  []Advisory          `json:"advisories"`
	Disclaimer  string              `json:"clinicalDisclaimer"`
}

// Usable reports whether the quality gate admitted the bundle.
func (r Report) Usable() bool { return r.Quality.Usable }

// Analyzer wires the rule engine with a logger. It is stateless beyond
// configuration and safe for concurrent use across bundles.
type Analyzer struct {
	log    *slog.Logger
	engine *rules.Engine
}

// New builds an analyzer with the given thresholds.
func New(logger *slog.Logger, th rules.Thresholds) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		log:    logger.With("component", "analyzer"),
		engine: rules.NewEngine(logger, th),
	}
}

// Run performs the full pass. The quality gate runs unconditionally; rule
// evaluation and metrics are skipped entirely (not silently run) when the
// verdict is unusable, so callers can surface the warnings instead.
func (a *Analyzer) Run(b model.Bundle) Report {
	report := Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Device:      b.Device,
		Disclaimer:  Disclaimer,
	}

	report.Quality = quality.Assess(b.Glucose)
	if !report.Quality.Usable {
		a.log.Warn("bundle rejected by quality gate",
			"score", report.Quality.Score,
			"reliability", report.Quality.Reliability,
			"readings", report.Quality.TotalReadings)
		return report
	}

	values := make([]float64, len(b.Glucose))
	for i, g := range b.Glucose {
		values[i] = g.Value
	}
	full := variability.Compute(values)
	report.Statistics = full.Rounded()
	report.Advisories = adviseOnMetrics(full)
	report.Findings = a.engine.Evaluate(b)

	a.log.Info("analysis complete",
		"readings", len(b.Glucose),
		"findings", len(report.Findings),
		"advisories", len(report.Advisories),
		"spanHours", report.Quality.SpanHours)
	return report
}
