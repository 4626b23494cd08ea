// Package verdict provides deterministic scoring and verdict determination
// for a validation result. No LLM calls are made here.
package verdict

import (
	"fmt"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
	"github.com/dshills/coursecheck/internal/validate"
)

// Verdict is the overall judgement on a validated schedule.
type Verdict string

const (
	// VerdictAccept means the schedule is usable as is.
	VerdictAccept Verdict = "ACCEPT"
	// VerdictReview means the schedule is usable but a student or advisor
	// should look at the warnings.
	VerdictReview Verdict = "REVIEW"
	// VerdictRegenerate means the agent should be asked for a new schedule.
	VerdictRegenerate Verdict = "REGENERATE"
)

// Summary is the scored outcome of one validation run.
type Summary struct {
	Verdict  Verdict `json:"verdict"`
	Score    int     `json:"score"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
	Repaired int     `json:"repaired"`
}

// repairedTypes are findings the engine fixes itself; they cost little.
var repairedTypes = map[schema.IssueType]bool{
	schema.IssueDuplicate:      true,
	schema.IssueCreditMismatch: true,
}

// reviewTypes are warnings that a person should look at.
var reviewTypes = map[schema.IssueType]bool{
	schema.IssuePlaceholder:        true,
	schema.IssueFullTimeViolation:  true,
	schema.IssueCreditOverage:      true,
	schema.IssueCreditUnderage:     true,
	schema.IssueInvalidCode:        true,
	schema.IssueExcessiveElectives: true,
	schema.IssueMissingData:        true,
}

// ComputeScore calculates the schedule score from issue counts.
// Start at 100; subtract 20 per error, 5 per unrepaired warning, 1 per
// repaired finding; clamp to [0, 100].
func ComputeScore(errors, warnings, repaired int) int {
	score := 100 - (errors * 20) - (warnings * 5) - repaired
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// VerdictOrdinal returns the numeric ordinal for a verdict, used to compare
// severity order. ACCEPT=0, REVIEW=1, REGENERATE=2.
// Used by --fail-on comparison: exit 2 if VerdictOrdinal(actual) >= VerdictOrdinal(threshold).
func VerdictOrdinal(v Verdict) int {
	switch v {
	case VerdictAccept:
		return 0
	case VerdictReview:
		return 1
	case VerdictRegenerate:
		return 2
	default:
		return -1
	}
}

// ParseVerdict accepts a verdict name in any case.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(s)))
	if VerdictOrdinal(v) < 0 {
		return "", fmt.Errorf("verdict: unknown verdict %q (want ACCEPT, REVIEW or REGENERATE)", s)
	}
	return v, nil
}

// Determine applies the verdict rules to a validation result.
//
// Rules (in order of precedence):
//  1. No academic semesters → REGENERATE
//  2. Any error-severity issue → REGENERATE
//  3. Any warning a person should look at → REVIEW
//  4. Otherwise (clean, or only auto-repaired findings) → ACCEPT
func Determine(res validate.Result) Verdict {
	if res.Stats.AcademicSemesters == 0 {
		return VerdictRegenerate
	}
	for _, is := range res.Issues {
		if is.Severity == schema.SeverityError {
			return VerdictRegenerate
		}
	}
	for _, is := range res.Issues {
		if reviewTypes[is.Type] {
			return VerdictReview
		}
	}
	return VerdictAccept
}

// ShouldRetry reports whether the agent should be asked to repair the
// schedule.
func ShouldRetry(res validate.Result) bool {
	return Determine(res) == VerdictRegenerate
}

// CountSeverities splits the issues into errors, unrepaired warnings and
// repaired findings.
func CountSeverities(res validate.Result) (errors, warnings, repaired int) {
	for _, is := range res.Issues {
		switch {
		case is.Severity == schema.SeverityError:
			errors++
		case repairedTypes[is.Type]:
			repaired++
		default:
			warnings++
		}
	}
	return
}

// Summarize scores res and determines its verdict.
func Summarize(res validate.Result) Summary {
	e, w, r := CountSeverities(res)
	return Summary{
		Verdict:  Determine(res),
		Score:    ComputeScore(e, w, r),
		Errors:   e,
		Warnings: w,
		Repaired: r,
	}
}
