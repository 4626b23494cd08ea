// Package pipeline runs raw agent output through the normalizer, the
// validation engine and the verdict scorer, producing a render.Report.
// The CLI and the HTTP API share it.
package pipeline

import (
	"github.com/dshills/coursecheck/internal/metrics"
	"github.com/dshills/coursecheck/internal/normalize"
	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/render"
	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/validate"
	"github.com/dshills/coursecheck/internal/verdict"
)

// Tool and Version identify this program in reports.
const (
	Tool    = "coursecheck"
	Version = "0.1.0"
)

// Options configures one check.
type Options struct {
	// Source names the input (file path, "stdin", "api").
	Source        string
	SchoolID      string
	Trim          bool
	TargetCredits int
	// Customize, when set, adjusts the resolved school profile, for
	// configuration overrides.
	Customize func(profile.Profile) profile.Profile
}

// Check normalizes raw and validates the resulting schedule.
func Check(raw any, opts Options) *render.Report {
	plan, rep := normalize.NormalizeWithReport(raw)
	metrics.ObserveStrategy(rep.Strategy)
	report := CheckPlan(plan, opts)
	report.Meta.Strategy = rep.Strategy
	return report
}

// CheckPlan validates an already canonical schedule.
func CheckPlan(plan schema.SchedulePlan, opts Options) *render.Report {
	prof := ResolveProfile(plan, opts)
	res := validate.Validate(plan, validate.Options{
		SchoolID:          opts.SchoolID,
		TrimExcessCredits: opts.Trim,
		TargetCredits:     opts.TargetCredits,
		Profile:           &prof,
	})
	sum := verdict.Summarize(res)
	metrics.ObserveValidation(res, sum)
	return NewReport(res, sum, opts)
}

// NewReport wraps a validation result in a report.
func NewReport(res validate.Result, sum verdict.Summary, opts Options) *render.Report {
	return &render.Report{
		Tool:    Tool,
		Version: Version,
		Input: render.Input{
			Source:        opts.Source,
			SchoolID:      res.Stats.SchoolID,
			Trim:          opts.Trim,
			TargetCredits: res.Stats.TargetCredits,
		},
		Summary: sum,
		Result:  res,
	}
}

// ResolveProfile picks the school profile for plan under opts.
func ResolveProfile(plan schema.SchedulePlan, opts Options) profile.Profile {
	prof := profile.Resolve(opts.SchoolID, plan.School)
	if opts.Customize != nil {
		prof = opts.Customize(prof)
	}
	return prof
}
