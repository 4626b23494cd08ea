// Package metrics defines the Prometheus collectors for coursecheck.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/coursecheck/internal/normalize"
	"github.com/dshills/coursecheck/internal/validate"
	"github.com/dshills/coursecheck/internal/verdict"
)

// ─── Validation ─────────────────────────────────────────────────────────────

// Validations counts validation runs by verdict.
var Validations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "validate",
	Name:      "runs_total",
	Help:      "Total validation runs by verdict.",
}, []string{"verdict"})

// Issues counts findings by type and severity.
var Issues = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "validate",
	Name:      "issues_total",
	Help:      "Total validation findings by type and severity.",
}, []string{"type", "severity"})

// CreditsTrimmed counts credits removed by elective trimming.
var CreditsTrimmed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "validate",
	Name:      "credits_trimmed_total",
	Help:      "Total elective credits removed by trimming.",
})

// ─── Normalizer ─────────────────────────────────────────────────────────────

// NormalizeStrategy counts which strategy produced the schedule.
var NormalizeStrategy = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "normalize",
	Name:      "strategy_total",
	Help:      "Total normalizations by winning strategy (none when all failed).",
}, []string{"strategy"})

// ─── Tools & Store ──────────────────────────────────────────────────────────

// ToolCalls counts tool applications by tool and result.
var ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "tools",
	Name:      "calls_total",
	Help:      "Total tool applications by tool and result (ok or error).",
}, []string{"tool", "result"})

// StoreEntries is the number of live schedules in the store.
var StoreEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "coursecheck",
	Subsystem: "store",
	Name:      "entries",
	Help:      "Current number of schedules held in the store.",
})

// ─── Generation ─────────────────────────────────────────────────────────────

// Generations counts agent generation calls by provider and outcome.
var Generations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "generate",
	Name:      "requests_total",
	Help:      "Total schedule generations by provider and outcome.",
}, []string{"provider", "outcome"})

// GenerationAttempts counts agent calls per generation, labelled with the
// attempt count (1 or 2).
var GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coursecheck",
	Subsystem: "generate",
	Name:      "attempts_total",
	Help:      "Total generations by number of agent attempts.",
}, []string{"attempts"})

// ObserveValidation records one validation run.
func ObserveValidation(res validate.Result, sum verdict.Summary) {
	Validations.WithLabelValues(string(sum.Verdict)).Inc()
	for _, is := range res.Issues {
		Issues.WithLabelValues(string(is.Type), string(is.Severity)).Inc()
	}
	if res.Stats.CreditsTrimmed > 0 {
		CreditsTrimmed.Add(float64(res.Stats.CreditsTrimmed))
	}
}

// ObserveStrategy records which normalizer strategy won.
func ObserveStrategy(s normalize.StrategyName) {
	if s == "" {
		s = normalize.StrategyNone
	}
	NormalizeStrategy.WithLabelValues(string(s)).Inc()
}

// ObserveTool records one tool application.
func ObserveTool(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ToolCalls.WithLabelValues(name, result).Inc()
}

// ObserveGeneration records one generation call; attempts is zero when
// the call failed before reaching the agent.
func ObserveGeneration(provider string, attempts int, err error) {
	if provider == "" {
		provider = "anthropic"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Generations.WithLabelValues(provider, outcome).Inc()
	if attempts > 0 {
		GenerationAttempts.WithLabelValues(strconv.Itoa(attempts)).Inc()
	}
}
