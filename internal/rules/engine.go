// Package rules hosts the clinical rule registry. Each rule is an independent
// pure function over one event bundle producing zero or one finding; the
// engine runs them in fixed registration order and isolates their faults.
package rules

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

// Rule names double as stable finding identifiers on the wire.
const (
	RulePostprandialHyperglycemia = "postprandial_hyperglycemia"
	RuleMistimedBolus             = "mistimed_bolus"
	RuleCarbRatioMismatch         = "carb_ratio_mismatch"
)

// RuleFunc evaluates one heuristic over a bundle. A nil finding means zero
// qualifying occurrences. Returned errors and panics are confined to the
// rule that raised them.
type RuleFunc func(model.Bundle, Thresholds) (*model.Finding, error)

// Rule couples a stable name with its evaluation function.
type Rule struct {
	Name string
	Eval RuleFunc
}

// Engine runs a fixed, explicitly ordered rule list. It holds no mutable
// state beyond configuration and is safe for concurrent use.
type Engine struct {
	log   *slog.Logger
	th    Thresholds
	rules []Rule
}

// NewEngine registers the three clinical rules in their canonical order.
func NewEngine(logger *slog.Logger, th Thresholds) *Engine {
	return newEngineWithRules(logger, th, []Rule{
		{Name: RulePostprandialHyperglycemia, Eval: detectPostprandialHyperglycemia},
		{Name: RuleMistimedBolus, Eval: detectMistimedBolus},
		{Name: RuleCarbRatioMismatch, Eval: detectCarbRatioMismatch},
	})
}

func newEngineWithRules(logger *slog.Logger, th Thresholds, rs []Rule) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{log: logger.With("component", "rule_engine"), th: th, rules: rs}
}

// Evaluate runs every registered rule exactly once. Findings are appended in
// registration order, never severity order. A failing rule logs a diagnostic
// and contributes nothing; it cannot abort the remaining rules or the caller.
func (e *Engine) Evaluate(b model.Bundle) []model.Finding {
	var findings []model.Finding
	for _, r := range e.rules {
		f, err := e.runOne(r, b)
		if err != nil {
			e.log.Error("rule evaluation failed", "rule", r.Name, "err", err)
			continue
		}
		if f == nil {
			continue
		}
		e.log.Info("rule matched", "rule", r.Name, "count", f.Count, "severity", f.Severity)
		findings = append(findings, *f)
	}
	return findings
}

// runOne converts a rule panic into an error so one degenerate window cannot
// take down the whole analysis.
func (e *Engine) runOne(r Rule, b model.Bundle) (f *model.Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			f = nil
			err = fmt.Errorf("rule %s panicked: %v", r.Name, rec)
		}
	}()
	return r.Eval(b, e.th)
}

// frequencySeverity maps an occurrence frequency onto the per-rule severity
// table: high at or above highFreq, medium at or above mediumFreq, else low.
func frequencySeverity(occurrences, opportunities int, highFreq, mediumFreq float64) model.Severity {
	if occurrences == 0 || opportunities == 0 {
		return model.SeverityLow
	}
	freq := float64(occurrences) / float64(opportunities)
	switch {
	case freq >= highFreq:
		return model.SeverityHigh
	case freq >= mediumFreq:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
